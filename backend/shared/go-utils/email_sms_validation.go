package utils

import (
	"context"
	"fmt"
	"net"
	"net/mail"
	"regexp"
	"strings"

	twilio "github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	lookupsv2 "github.com/twilio/twilio-go/rest/lookups/v2"
)

// -----------------------------------------------------------------------
// 1) PHONE NUMBER VALIDATION
// -----------------------------------------------------------------------

var (
	e164Regex         = regexp.MustCompile(`^\+[1-9]\d{7,14}$`) // ITU-T E.164
	indianMobileRegex = regexp.MustCompile(`^[6-9]\d{9}$`)
	phoneStripRegex   = regexp.MustCompile(`[\s\-().]`)
)

// IsE164 reports basic E.164 compliance
func IsE164(number string) bool { return e164Regex.MatchString(number) }

// NormalizeIndianPhone turns the forms people actually type
// ("98765 43210", "098765-43210", "+91 9876543210") into +91XXXXXXXXXX.
// Numbers already in E.164 with another country code pass through.
func NormalizeIndianPhone(raw string) (string, error) {
	n := phoneStripRegex.ReplaceAllString(strings.TrimSpace(raw), "")
	switch {
	case strings.HasPrefix(n, "+91"):
		n = n[3:]
	case strings.HasPrefix(n, "+"):
		if IsE164(n) {
			return n, nil
		}
		return "", ErrInvalidPhone
	case len(n) == 12 && strings.HasPrefix(n, "91"):
		n = n[2:]
	case len(n) == 11 && strings.HasPrefix(n, "0"):
		n = n[1:]
	}
	if !indianMobileRegex.MatchString(n) {
		return "", ErrInvalidPhone
	}
	return "+91" + n, nil
}

// ValidatePhoneNumber validates an E.164 `number`. With a non-nil Twilio
// client it also performs a Lookups V2 fetch; a 404 means the number does
// not exist.
func ValidatePhoneNumber(
	ctx context.Context,
	number string,
	country *string,
	tw *twilio.RestClient,
) (bool, error) {
	if !IsE164(number) {
		return false, nil
	}
	if tw == nil {
		return true, nil
	}

	var params *lookupsv2.FetchPhoneNumberParams
	if country != nil && *country != "" {
		params = &lookupsv2.FetchPhoneNumberParams{CountryCode: country}
	}

	_, err := tw.LookupsV2.FetchPhoneNumber(number, params)
	if err == nil {
		return true, nil
	}
	if restErr, ok := err.(*twilioclient.TwilioRestError); ok {
		if restErr.Status == 404 {
			return false, nil
		}
		return false, fmt.Errorf("twilio lookup failed: %d %s", restErr.Status, restErr.Error())
	}
	return false, err
}

// -----------------------------------------------------------------------
// 2) EMAIL VALIDATION
// -----------------------------------------------------------------------

func isValidEmailSyntax(e string) bool {
	addr, err := mail.ParseAddress(e)
	return err == nil && addr.Address == e
}

func hasMX(ctx context.Context, domain string) bool {
	mx, err := net.DefaultResolver.LookupMX(ctx, domain)
	return err == nil && len(mx) > 0
}

// ValidateEmail checks syntax and, when checkMX is set, that the domain
// accepts mail.
func ValidateEmail(ctx context.Context, email string, checkMX bool) bool {
	if !isValidEmailSyntax(email) {
		return false
	}
	if !checkMX {
		return true
	}
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return false
	}
	return hasMX(ctx, parts[1])
}
