package domain

// InstrumentPair binds a closed-end fund ticker to the symbol its NAV
// trades under (e.g. GAB / XGABX). Each pair is evaluated independently.
type InstrumentPair struct {
	Ticker    string
	NAVSymbol string
}
