package models

// Provider is the cloud provider hosting a node
type Provider string

const (
	ProviderAWS   Provider = "AWS"
	ProviderGCP   Provider = "GCP"
	ProviderAzure Provider = "Azure"
)

// Providers lists every known provider in display order
var Providers = []Provider{ProviderAWS, ProviderGCP, ProviderAzure}

// Exchange is the trading venue a node belongs to
type Exchange string

const (
	ExchangeBinance  Exchange = "Binance"
	ExchangeBybit    Exchange = "Bybit"
	ExchangeOKX      Exchange = "OKX"
	ExchangeDeribit  Exchange = "Deribit"
	ExchangeCoinbase Exchange = "Coinbase"
	ExchangeKraken   Exchange = "Kraken"
)

// Exchanges lists every known exchange
var Exchanges = []Exchange{
	ExchangeBinance,
	ExchangeBybit,
	ExchangeOKX,
	ExchangeDeribit,
	ExchangeCoinbase,
	ExchangeKraken,
}

// Node is a simulated exchange endpoint at a fixed coordinate
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Exchange Exchange `json:"exchange" yaml:"exchange"`
	Provider Provider `json:"provider" yaml:"provider"`
	Region   string   `json:"region" yaml:"region"`
	Lat      float64  `json:"lat" yaml:"lat"`
	Lon      float64  `json:"lon" yaml:"lon"`
}

// CloudRegion is a provider region marker. It plays no part in latency computation.
type CloudRegion struct {
	ID       string   `json:"id" yaml:"id"`
	Provider Provider `json:"provider" yaml:"provider"`
	Region   string   `json:"region" yaml:"region"`
	Lat      float64  `json:"lat" yaml:"lat"`
	Lon      float64  `json:"lon" yaml:"lon"`
}
