package state

import (
	"encoding/hex"
	"strings"
)

var (
	saleStatePrefix = []byte("sale/state/")
	allowlistPrefix = []byte("sale/allowlist/")
	positionPrefix  = []byte("sale/position/")
	balancePrefix   = []byte("ledger/balance/")
)

func saleStateKey(id [32]byte) []byte {
	return appendHex(saleStatePrefix, id[:])
}

func allowlistKey(id [32]byte) []byte {
	return appendHex(allowlistPrefix, id[:])
}

func positionKey(id [32]byte, buyer [20]byte) []byte {
	key := appendHex(positionPrefix, id[:])
	key = append(key, '/')
	return appendHex(key, buyer[:])
}

func balanceKey(asset string, account [20]byte) []byte {
	normalized := strings.ToUpper(strings.TrimSpace(asset))
	key := make([]byte, 0, len(balancePrefix)+len(normalized)+1+40)
	key = append(key, balancePrefix...)
	key = append(key, normalized...)
	key = append(key, '/')
	return appendHex(key, account[:])
}

func appendHex(prefix, raw []byte) []byte {
	buf := make([]byte, len(prefix)+hex.EncodedLen(len(raw)))
	copy(buf, prefix)
	hex.Encode(buf[len(prefix):], raw)
	return buf
}
