package config

import "testing"

func TestValidateGateway(t *testing.T) {
	tests := []struct {
		name    string
		gateway GatewayConfig
		wantErr bool
	}{
		{
			name:    "fully configured",
			gateway: GatewayConfig{KeyID: "rzp_test_abc", KeySecret: "secret", WebhookSecret: "whsec"},
			wantErr: false,
		},
		{
			name:    "missing key id",
			gateway: GatewayConfig{KeySecret: "secret", WebhookSecret: "whsec"},
			wantErr: true,
		},
		{
			name:    "missing key secret",
			gateway: GatewayConfig{KeyID: "rzp_test_abc", WebhookSecret: "whsec"},
			wantErr: true,
		},
		{
			name:    "missing webhook secret",
			gateway: GatewayConfig{KeyID: "rzp_test_abc", KeySecret: "secret"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Gateway: tt.gateway}
			err := cfg.ValidateGateway()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGateway() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsAdminEmail(t *testing.T) {
	cfg := &Config{}
	cfg.Admin.Emails = []string{"ops@roamly.in", "Finance@Roamly.in"}

	tests := []struct {
		email string
		want  bool
	}{
		{"ops@roamly.in", true},
		{"OPS@ROAMLY.IN", true},
		{"finance@roamly.in", true},
		{"stranger@example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := cfg.IsAdminEmail(tt.email); got != tt.want {
			t.Errorf("IsAdminEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}
