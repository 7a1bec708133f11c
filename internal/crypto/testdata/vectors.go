package testdata

// TestVector contains fixed inputs for container round trips.
type TestVector struct {
	Name       string
	Passphrase string
	Salt       string // Hex, 20 bytes
	IV         string // Hex, 16 bytes
	Plaintext  string
}

// Vectors contains test vectors for crypto operations.
var Vectors = []TestVector{
	{
		Name:       "ascii document",
		Passphrase: "correct horse battery staple",
		Salt:       "000102030405060708090a0b0c0d0e0f10111213",
		IV:         "a0a1a2a3a4a5a6a7a8a9aaabacadaeaf",
		Plaintext:  "v1\nexported\n[ENTRIES]\nheader\n",
	},
	{
		Name:       "unicode passphrase",
		Passphrase: "пароль123",
		Salt:       "ffeeddccbbaa99887766554433221100ffeeddcc",
		IV:         "0f0e0d0c0b0a09080706050403020100",
		Plaintext:  "Hello, 世界! 🌍",
	},
	{
		Name:       "exact block multiple",
		Passphrase: "p",
		Salt:       "1111111111111111111111111111111111111111",
		IV:         "22222222222222222222222222222222",
		Plaintext:  "0123456789abcdef",
	},
}
