package dto

import "testing"

func TestCreateTokenRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateTokenRequest
		wantErr bool
	}{
		{
			name: "credentials_with_name_and_scopes",
			req: CreateTokenRequest{
				Email:    "user@example.com",
				Password: "testpass123",
				Name:     "laptop",
				Scopes:   []string{"read", "write"},
			},
		},
		{
			name: "credentials_only",
			req: CreateTokenRequest{
				Email:    "user@example.com",
				Password: "testpass123",
			},
		},
		{
			name: "missing_email",
			req: CreateTokenRequest{
				Password: "testpass123",
			},
			wantErr: true,
		},
		{
			name: "missing_password",
			req: CreateTokenRequest{
				Email: "user@example.com",
			},
			wantErr: true,
		},
		{
			name: "invalid_scope",
			req: CreateTokenRequest{
				Email:    "user@example.com",
				Password: "testpass123",
				Scopes:   []string{"admin"},
			},
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := Validate(&test.req)
			if (err != nil) != test.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, test.wantErr)
			}
		})
	}
}
