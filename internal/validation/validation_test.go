package validation

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "user@mail.example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "testexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "test@",
			wantErr: true,
		},
		{
			name:    "missing local part",
			email:   "@example.com",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
		{
			name:    "spaces in email",
			email:   "test @example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid name",
			input:   "John Doe",
			wantErr: false,
		},
		{
			name:    "single name",
			input:   "John",
			wantErr: false,
		},
		{
			name:    "empty name",
			input:   "",
			wantErr: true,
		},
		{
			name:    "name too short",
			input:   "J",
			wantErr: true,
		},
		{
			name:    "name with hyphen",
			input:   "Mary-Jane",
			wantErr: false,
		},
		{
			name:    "name with apostrophe",
			input:   "O'Brien",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "password123",
			wantErr:  false,
		},
		{
			name:     "password exactly 8 characters",
			password: "pass1234",
			wantErr:  false,
		},
		{
			name:     "password too short",
			password: "pass123",
			wantErr:  true,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
		{
			name:     "long password",
			password: "thisIsAVeryLongPasswordThatShouldBeValid123",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

type classRequest struct {
	Name  string `json:"name" validate:"required"`
	Grade int    `json:"grade" validate:"min=1,max=5"`
	Date  string `json:"date" validate:"omitempty,calendardate"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name       string
		input      classRequest
		wantFields []string
	}{
		{
			name:  "valid",
			input: classRequest{Name: "5A", Grade: 5, Date: "2024-09-05"},
		},
		{
			name:       "missing name and bad grade",
			input:      classRequest{Grade: 7},
			wantFields: []string{"name", "grade"},
		},
		{
			name:       "bad date",
			input:      classRequest{Name: "4B", Grade: 4, Date: "05/09/2024"},
			wantFields: []string{"date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Struct() error = %v, want nil", err)
				}
				return
			}
			ve, ok := As(err)
			if !ok {
				t.Fatalf("Struct() error = %v, want *ValidationError", err)
			}
			if len(ve.Fields) != len(tt.wantFields) {
				t.Fatalf("Fields = %+v, want %v", ve.Fields, tt.wantFields)
			}
			for i, field := range tt.wantFields {
				if ve.Fields[i].Field != field {
					t.Errorf("Fields[%d] = %s, want %s", i, ve.Fields[i].Field, field)
				}
				if ve.Fields[i].Error == "" {
					t.Errorf("Fields[%d] has no message", i)
				}
			}
		})
	}
}

func TestFieldErrorIsValidationError(t *testing.T) {
	err := ValidatePassword("short")
	ve, ok := As(err)
	if !ok || len(ve.Fields) != 1 || ve.Fields[0].Field != "password" {
		t.Errorf("ValidatePassword() = %#v, want single password field error", err)
	}
}
