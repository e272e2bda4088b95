package chaincode

import (
	"encoding/base64"
	"strings"
)

// AdminMatcher decides whether an enrollment identity string belongs to an
// administrator. The matching rule is injected at contract construction so
// deployments can swap it without touching transition logic.
type AdminMatcher func(identityID string) bool

// DefaultRoles is the role set accepted by this deployment. Unassigned is the
// role given to self-service sign-ups before an administrator assigns a real
// one.
var DefaultRoles = []string{"Producer", "Distributor", "Customer", "Admin", "Unassigned"}

// SubjectCommonNameMatcher returns a matcher that reports whether the
// identity's x509 subject carries CN=<name>. Enrollment ids have the form
// "x509::<subject>::<issuer>", base64-encoded by the identity library.
func SubjectCommonNameMatcher(name string) AdminMatcher {
	return func(identityID string) bool {
		id := identityID
		if decoded, err := base64.StdEncoding.DecodeString(identityID); err == nil {
			id = string(decoded)
		}
		if !strings.HasPrefix(id, "x509::") {
			return false
		}
		subject := strings.TrimPrefix(id, "x509::")
		if i := strings.Index(subject, "::"); i >= 0 {
			subject = subject[:i]
		}
		for _, part := range strings.FieldsFunc(subject, func(r rune) bool {
			return r == ',' || r == '+' || r == '/'
		}) {
			if strings.TrimSpace(part) == "CN="+name {
				return true
			}
		}
		return false
	}
}

// isAdminCaller reports whether the caller is an administrator. Identity
// lookup failures count as "not admin"; callers decide whether that is an
// authorization failure.
func isAdminCaller(matcher AdminMatcher, caller CallerIdentity) bool {
	if matcher == nil {
		return false
	}
	id, err := caller.ID()
	if err != nil {
		return false
	}
	return matcher(id)
}

// callerParticipantID returns the platform-attested "id" attribute, or ""
// when absent.
func callerParticipantID(caller CallerIdentity) string {
	value, found, err := caller.Attribute("id")
	if err != nil || !found {
		return ""
	}
	return value
}

// callerParticipantRole returns the platform-attested "role" attribute, or ""
// when absent.
func callerParticipantRole(caller CallerIdentity) string {
	value, found, err := caller.Attribute("role")
	if err != nil || !found {
		return ""
	}
	return value
}
