package extract

import (
	"encoding/hex"
	"strings"
	"unicode"
)

// poolSignatures maps coinbase tags to pool names. Order matters: the first
// match wins.
var poolSignatures = []struct {
	tag  string
	name string
}{
	{"ViaBTC", "ViaBTC"},
	{"F2Pool", "F2Pool"},
	{"AntPool", "AntPool"},
	{"Foundry", "Foundry USA"},
	{"Binance", "Binance Pool"},
	{"BTC.com", "BTC.com"},
	{"Poolin", "Poolin"},
	{"SlushPool", "Slush Pool"},
	{"MARA", "Marathon Digital"},
	{"marathon", "Marathon Digital"},
	{"SpiderPool", "SpiderPool"},
	{"SBI", "SBI Crypto"},
	{"EMCD", "EMCD"},
	{"Luxor", "Luxor"},
	{"BraiinsPool", "Braiins Pool"},
	{"stratum", "Braiins Pool"},
	{"ckpool", "CKPool"},
	{"luckyPool", "luckyPool"},
	{"ultimus", "Ultimus Pool"},
	{"SecPool", "SecPool"},
}

// UnknownPool is reported when a coinbase carries no known tag.
const UnknownPool = "Unknown"

// MiningPool guesses the pool from a coinbase script. It returns the pool name
// and the printable coinbase text; both are empty for invalid input.
func MiningPool(coinbaseHex string) (string, string) {
	if coinbaseHex == "" {
		return "", ""
	}
	raw, err := hex.DecodeString(coinbaseHex)
	if err != nil {
		return "", ""
	}
	text := printableASCII(raw)
	lower := strings.ToLower(text)
	for _, sig := range poolSignatures {
		if strings.Contains(lower, strings.ToLower(sig.tag)) {
			return sig.name, text
		}
	}
	return UnknownPool, text
}

func printableASCII(raw []byte) string {
	var b strings.Builder
	for _, c := range raw {
		if c < unicode.MaxASCII && (unicode.IsPrint(rune(c)) || c == ' ') {
			b.WriteByte(c)
		}
	}
	return b.String()
}
