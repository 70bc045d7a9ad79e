package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign_KnownVector(t *testing.T) {
	// echo -n "order_1|pay_1" | openssl dgst -sha256 -hmac secret
	got := Sign("secret", CheckoutPayload("order_1", "pay_1"))
	assert.Equal(t, "52115a0d3400de9e86aade1f1b6eba9e8974604f4e267a9e9a16633a4c8dd2cb", got)
	assert.NotEqual(t, got, Sign("other", []byte("order_1|pay_1")))
}

func TestValidSignature_FlipAnyCharacter(t *testing.T) {
	payload := CheckoutPayload("order_9A8b", "pay_Z12")
	sig := Sign("key_secret", payload)
	assert.True(t, ValidSignature("key_secret", payload, sig))

	for i := range sig {
		b := []byte(sig)
		if b[i] == '0' {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
		assert.False(t, ValidSignature("key_secret", payload, string(b)), "flipped index %d", i)
	}
}

func TestValidSignature_AnyBodyMutation(t *testing.T) {
	body := []byte(`{"event":"payment.captured","payload":{}}`)
	sig := Sign("wh_secret", body)
	assert.True(t, ValidSignature("wh_secret", body, sig))

	for i := range body {
		mutated := append([]byte(nil), body...)
		mutated[i] ^= 0x01
		assert.False(t, ValidSignature("wh_secret", mutated, sig), "mutated byte %d", i)
	}
	assert.False(t, ValidSignature("wh_secret", append(append([]byte(nil), body...), ' '), sig))
	assert.False(t, ValidSignature("wh_secret", append([]byte(" "), body...), sig))
}

func TestValidSignature_Empty(t *testing.T) {
	assert.False(t, ValidSignature("s", []byte("x"), ""))
	assert.False(t, ValidSignature("s", []byte("x"), "not-hex"))
}

func TestNotes_Unmarshal(t *testing.T) {
	cases := map[string]struct {
		in   string
		want Notes
	}{
		"object": {`{"enrollmentId":"42","courseId":7}`, Notes{"enrollmentId": "42", "courseId": "7"}},
		"array":  {`[]`, Notes{}},
		"null":   {`null`, Notes{}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var n Notes
			assert.NoError(t, n.UnmarshalJSON([]byte(tc.in)))
			assert.Equal(t, tc.want, n)
		})
	}
}
