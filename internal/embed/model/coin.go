package model

// Coin names the chain family a record was scanned from.
type Coin string

// Network names the network of a coin (mainnet, testnet, ...).
type Network string

var (
	BTC Coin = "BTC"
	LTC Coin = "LTC"
)

var (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Signet  Network = "signet"
	Regtest Network = "regtest"
)
