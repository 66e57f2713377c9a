package qrpayload

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedPayload indicates a scanned payload that cannot be decoded.
// It is a user-correctable condition (rescan, retype), never fatal.
var ErrMalformedPayload = errors.New("malformed attendance payload")

// Payload is the decoded identity tuple of a scanned attendance QR payload.
// Decoding performs no existence checks; resolving the session against the
// store is the verifier's job.
type Payload struct {
	SessionID int64
	SubjectID int64
	Code      string
}

// Encode renders the scannable wire format for a session:
//
//	session:<id>;subject:<subjectId>;code:<code>
//
// The format is consumed by external scanners and must stay bit-exact.
// Field values never contain ';' (ids are integers, codes are uppercase
// alphanumeric), so no escaping is defined.
func Encode(sessionID, subjectID int64, code string) string {
	return fmt.Sprintf("session:%d;subject:%d;code:%s", sessionID, subjectID, code)
}

// Decode parses a scanned payload back into its identity tuple.
// Parts are separated by ';' and each part is split on its first ':' only.
// A payload is malformed when it is empty, a part lacks ':', or the
// 'session' key is missing or non-numeric.
func Decode(payload string) (*Payload, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, ErrMalformedPayload
	}

	fields := make(map[string]string)
	for _, part := range strings.Split(payload, ";") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			return nil, ErrMalformedPayload
		}
		fields[kv[0]] = kv[1]
	}

	rawSession, ok := fields["session"]
	if !ok {
		return nil, ErrMalformedPayload
	}
	sessionID, err := strconv.ParseInt(rawSession, 10, 64)
	if err != nil {
		return nil, ErrMalformedPayload
	}

	decoded := &Payload{SessionID: sessionID, Code: fields["code"]}

	// subject is informational on the wire; tolerate its absence but reject garbage
	if rawSubject, ok := fields["subject"]; ok {
		subjectID, err := strconv.ParseInt(rawSubject, 10, 64)
		if err != nil {
			return nil, ErrMalformedPayload
		}
		decoded.SubjectID = subjectID
	}

	return decoded, nil
}
