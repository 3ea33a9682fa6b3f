package testdata

// TestVector contains known scrypt input/output pairs.
type TestVector struct {
	Name     string
	Password string
	Salt     string
	N        int
	R        int
	P        int
	DKLen    int
	Key      string // Hex
}

// Vectors are the test vectors of RFC 7914 section 12 that run quickly.
var Vectors = []TestVector{
	{
		Name:  "empty password and salt",
		N:     16,
		R:     1,
		P:     1,
		DKLen: 64,
		Key: "77d6576238657b203b19ca42c18a0497f16b4844e3074ae8dfdffa3fede21442" +
			"fcd0069ded0948f8326a753a0fc81f17e8d3e0fb2e0d3628cf35e20c38d18906",
	},
	{
		Name:     "password NaCl",
		Password: "password",
		Salt:     "NaCl",
		N:        1024,
		R:        8,
		P:        16,
		DKLen:    64,
		Key: "fdbabe1c9d3472007856e7190d01e9fe7c6ad7cbc8237830e77376634b373162" +
			"2eaf30d92e22a3886ff109279d9830dac727afb94a83ee6d8360cbdfa2cc0640",
	},
	{
		Name:     "pleaseletmein SodiumChloride",
		Password: "pleaseletmein",
		Salt:     "SodiumChloride",
		N:        16384,
		R:        8,
		P:        1,
		DKLen:    64,
		Key: "7023bdcb3afd7348461c06cd81fd38ebfda8fbba904f8e3ea9b543f6545da1f2" +
			"d5432955613f0fcf62d49705242a9af9e61e85dc0d651e40dfcf017b45575887",
	},
}
