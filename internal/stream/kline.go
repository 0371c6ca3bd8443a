package stream

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/TheBitty/TradingApp/internal/model"
)

// wsKlineMsg is the kline stream message envelope.
type wsKlineMsg struct {
	EventType string `json:"e"`
	Symbol    string `json:"s"`
	Kline     struct {
		OpenTime  int64  `json:"t"`
		CloseTime int64  `json:"T"`
		Interval  string `json:"i"`
		Open      string `json:"o"`
		High      string `json:"h"`
		Low       string `json:"l"`
		Close     string `json:"c"`
		Volume    string `json:"v"`
		IsClosed  bool   `json:"x"`
	} `json:"k"`
}

// parseKline decodes one kline stream message into a bar. The bar
// timestamp is the kline open time in unix seconds. closed reports
// whether the kline is final; the stream repeats the same open time
// until the interval ends.
func parseKline(data []byte) (bar model.Bar, closed bool, err error) {
	var m wsKlineMsg
	if err := json.Unmarshal(data, &m); err != nil {
		return model.Bar{}, false, fmt.Errorf("decode kline: %w", err)
	}
	if m.EventType != "kline" {
		return model.Bar{}, false, fmt.Errorf("unexpected event type %q", m.EventType)
	}

	k := m.Kline
	bar = model.Bar{
		Timestamp: k.OpenTime / 1000,
		Symbol:    strings.ToUpper(m.Symbol),
		Source:    "binance",
	}
	if bar.Open, err = parseField("open", k.Open); err != nil {
		return model.Bar{}, false, err
	}
	if bar.High, err = parseField("high", k.High); err != nil {
		return model.Bar{}, false, err
	}
	if bar.Low, err = parseField("low", k.Low); err != nil {
		return model.Bar{}, false, err
	}
	if bar.Close, err = parseField("close", k.Close); err != nil {
		return model.Bar{}, false, err
	}
	if bar.Volume, err = parseField("volume", k.Volume); err != nil {
		return model.Bar{}, false, err
	}
	bar.Price = bar.Close

	return bar, k.IsClosed, nil
}

func parseField(name, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse kline %s %q: %w", name, value, err)
	}
	return v, nil
}
