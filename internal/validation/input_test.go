package validation

import (
	"strings"
	"testing"
)

func TestDetectReceiveIDType(t *testing.T) {
	tests := []struct {
		id      string
		want    string
		wantErr bool
	}{
		{id: "ou_7d8a6e6df7621556ce0d21922b676706ccs", want: ReceiveIDOpenID},
		{id: "on_94a1ee5551019f18cd73d9f111898cf2", want: ReceiveIDUnionID},
		{id: "oc_a0553eda9014c201e6969b478895c230", want: ReceiveIDChatID},
		{id: "ada@example.com", want: ReceiveIDEmail},
		{id: " 5d9bdxxx ", want: ReceiveIDUserID},
		{id: "", wantErr: true},
		{id: "bad@@example", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := DetectReceiveIDType(tt.id)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DetectReceiveIDType(%q) expected error, got %q", tt.id, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectReceiveIDType(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestValidateChatName(t *testing.T) {
	if err := ValidateChatName("release-war-room"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Runes, not bytes.
	if err := ValidateChatName(strings.Repeat("群", MaxChatNameLength)); err != nil {
		t.Fatalf("unexpected error for %d runes: %v", MaxChatNameLength, err)
	}
	if err := ValidateChatName(strings.Repeat("a", MaxChatNameLength+1)); err == nil {
		t.Fatal("expected error for oversized name")
	}
}

func TestValidateMessageContent(t *testing.T) {
	tests := []struct {
		name    string
		msgType string
		size    int
		wantErr bool
	}{
		{"empty text", "text", 0, false},
		{"text at limit", "text", MaxMessageLength, false},
		{"text over limit", "text", MaxMessageLength + 1, true},
		{"card at limit", "interactive", MaxCardLength, false},
		{"card over limit", "interactive", MaxCardLength + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessageContent(tt.msgType, strings.Repeat("x", tt.size))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateMessageContent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.msgType) {
				t.Errorf("error %q should name the message type", err)
			}
		})
	}
}

func TestValidateJSONPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		errText string
	}{
		{"object", `{"text":"hi"}`, ""},
		{"empty", "", "cannot be empty"},
		{"malformed", `{"text":`, "not valid JSON"},
		{"oversized", `"` + strings.Repeat("x", MaxJSONPayload) + `"`, "exceeds maximum size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSONPayload(tt.payload)
			if tt.errText == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errText) {
				t.Fatalf("error = %v, want containing %q", err, tt.errText)
			}
		})
	}
}

func TestValidateEmailFormat(t *testing.T) {
	valid := []string{"", "ada@example.com", "first.last+tag@sub.example.cn"}
	for _, email := range valid {
		if err := ValidateEmailFormat(email); err != nil {
			t.Errorf("ValidateEmailFormat(%q) unexpected error: %v", email, err)
		}
	}

	invalid := []string{"plain", "@example.com", "Ada <ada@example.com>", strings.Repeat("a", MaxEmailLength) + "@x.com"}
	for _, email := range invalid {
		if err := ValidateEmailFormat(email); err == nil {
			t.Errorf("ValidateEmailFormat(%q) expected error", email)
		}
	}
}

func TestValidatePhoneFormat(t *testing.T) {
	valid := []string{"", "+8613800138000", "(555) 123-4567", "138 0013 8000"}
	for _, phone := range valid {
		if err := ValidatePhoneFormat(phone); err != nil {
			t.Errorf("ValidatePhoneFormat(%q) unexpected error: %v", phone, err)
		}
	}

	invalid := []string{"555.123.4567", "1+555", "abc", strings.Repeat("1", MaxPhoneLength+1)}
	for _, phone := range invalid {
		if err := ValidatePhoneFormat(phone); err == nil {
			t.Errorf("ValidatePhoneFormat(%q) expected error", phone)
		}
	}
}
