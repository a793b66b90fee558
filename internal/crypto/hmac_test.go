package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHMACAuthSign(t *testing.T) {
	// Worked example from the Binance API documentation.
	auth := &HMACAuth{
		Key:    "vmPUZE6mv9SD5VNHk4HlWFsOr6aKE2zvsw0MuIgwCIPy6utIco14y7Ju91duEh8A",
		Secret: "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j",
	}
	query := "symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559"

	sig := auth.Sign(query)
	assert.Equal(t, "c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71", sig)
}

func TestHMACAuthSignDependsOnSecret(t *testing.T) {
	a := &HMACAuth{Secret: "secret-a"}
	b := &HMACAuth{Secret: "secret-b"}

	assert.NotEqual(t, a.Sign("timestamp=1"), b.Sign("timestamp=1"))
	assert.Equal(t, a.Sign("timestamp=1"), a.Sign("timestamp=1"))
}

func TestHMACAuthStringRedacts(t *testing.T) {
	auth := &HMACAuth{Key: "abcdefgh", Secret: "12345678"}

	s := auth.String()
	assert.NotContains(t, s, "abcdefgh")
	assert.NotContains(t, s, "12345678")
	assert.Contains(t, s, "abcd****")
}
