package validation

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Input limits enforced before a request leaves the CLI.
const (
	MaxChatNameLength = 60
	MaxEmailLength    = 320
	MaxPhoneLength    = 20
	// MaxMessageLength is the platform limit on a text or post message body.
	MaxMessageLength = 150 * 1024
	// MaxCardLength applies to interactive card payloads.
	MaxCardLength  = 30 * 1024
	MaxJSONPayload = 1 << 20
)

// Receive ID types accepted by the messaging endpoints.
const (
	ReceiveIDOpenID  = "open_id"
	ReceiveIDUnionID = "union_id"
	ReceiveIDUserID  = "user_id"
	ReceiveIDEmail   = "email"
	ReceiveIDChatID  = "chat_id"
)

// DetectReceiveIDType infers the receive_id_type for id from its prefix:
// ou_ open_id, on_ union_id, oc_ chat_id, an address with @ is an email and
// anything else is treated as a tenant user_id.
func DetectReceiveIDType(id string) (string, error) {
	id = strings.TrimSpace(id)
	switch {
	case id == "":
		return "", fmt.Errorf("receive id cannot be empty")
	case strings.HasPrefix(id, "ou_"):
		return ReceiveIDOpenID, nil
	case strings.HasPrefix(id, "on_"):
		return ReceiveIDUnionID, nil
	case strings.HasPrefix(id, "oc_"):
		return ReceiveIDChatID, nil
	case strings.Contains(id, "@"):
		if err := ValidateEmailFormat(id); err != nil {
			return "", err
		}
		return ReceiveIDEmail, nil
	default:
		return ReceiveIDUserID, nil
	}
}

// ValidateChatName checks a group chat name length.
func ValidateChatName(name string) error {
	if n := utf8.RuneCountInString(name); n > MaxChatNameLength {
		return fmt.Errorf("chat name exceeds maximum length of %d characters (got %d)", MaxChatNameLength, n)
	}
	return nil
}

// ValidateMessageContent checks the byte size of a message body. Cards have a
// tighter limit than text and post messages.
func ValidateMessageContent(msgType, content string) error {
	limit := MaxMessageLength
	if msgType == "interactive" {
		limit = MaxCardLength
	}
	if len(content) > limit {
		return fmt.Errorf("%s content exceeds maximum size of %d bytes (got %d)", msgType, limit, len(content))
	}
	return nil
}

// ValidateJSONPayload checks that payload is non-empty, within size and
// syntactically valid JSON.
func ValidateJSONPayload(payload string) error {
	if payload == "" {
		return fmt.Errorf("JSON payload cannot be empty")
	}
	if len(payload) > MaxJSONPayload {
		return fmt.Errorf("JSON payload exceeds maximum size of %d bytes (got %d)", MaxJSONPayload, len(payload))
	}
	if !json.Valid([]byte(payload)) {
		return fmt.Errorf("JSON payload is not valid JSON")
	}
	return nil
}

// ValidateEmailFormat validates the format of an email address.
// Empty input is accepted.
func ValidateEmailFormat(email string) error {
	if email == "" {
		return nil
	}
	if utf8.RuneCountInString(email) > MaxEmailLength {
		return fmt.Errorf("email exceeds maximum length of %d characters", MaxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	if addr.Address != email {
		return fmt.Errorf("invalid email format: %q is not a bare address", email)
	}
	return nil
}

// ValidatePhoneFormat accepts digits, spaces, dashes, parentheses and a
// leading +. Empty input is accepted.
func ValidatePhoneFormat(phone string) error {
	if phone == "" {
		return nil
	}
	if utf8.RuneCountInString(phone) > MaxPhoneLength {
		return fmt.Errorf("phone number exceeds maximum length of %d characters", MaxPhoneLength)
	}
	for i, r := range phone {
		if r == '+' && i == 0 {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		if r == ' ' || r == '-' || r == '(' || r == ')' {
			continue
		}
		return fmt.Errorf("invalid phone format: contains invalid character '%c'", r)
	}
	return nil
}
