package common

// WipeByteArray zeroes b in place. Used to scrub passwords read from the
// terminal once they have been handed to the auth layer. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
