package tag

import "github.com/google/uuid"

// Namespace is the fixed UUID namespace tag identifiers are derived in.
// Changing it changes every tag identifier ever produced.
var Namespace = uuid.MustParse("5b0c6e2a-3f41-4d8e-9a57-7c1e2f3d4b60")

// Identity returns the identifier for an already normalized tag value: the
// RFC 4122 version 5 UUID (SHA-1) of the UTF-8 bytes of value in Namespace.
func Identity(value string) uuid.UUID {
	return uuid.NewSHA1(Namespace, []byte(value))
}
