package service

// Сырые ответы OKX: все числа приходят строками.

type Instrument struct {
	InstID    string `json:"instId"`
	InstType  string `json:"instType"`
	TickSz    string `json:"tickSz"`
	LotSz     string `json:"lotSz"`
	MinSz     string `json:"minSz"`
	CtVal     string `json:"ctVal"`
	CtMult    string `json:"ctMult"`
	CtType    string `json:"ctType"`    // linear / inverse
	SettleCcy string `json:"settleCcy"` // USDT
	State     string `json:"state"`
	Lever     string `json:"lever"`
}

type balanceData struct {
	TotalEq string `json:"totalEq"`
	Details []struct {
		Ccy       string `json:"ccy"`
		Eq        string `json:"eq"`
		AvailBal  string `json:"availBal"`
		FrozenBal string `json:"frozenBal"`
	} `json:"details"`
}

type algoOrder struct {
	AlgoID     string `json:"algoId"`
	InstID     string `json:"instId"`
	OrdType    string `json:"ordType"`
	Side       string `json:"side"`
	PosSide    string `json:"posSide"`
	Sz         string `json:"sz"`
	TriggerPx  string `json:"triggerPx"`
	OrdPx      string `json:"ordPx"`
	ReduceOnly string `json:"reduceOnly"`
	CTime      string `json:"cTime"`
}

type pendingOrder struct {
	OrdID      string `json:"ordId"`
	InstID     string `json:"instId"`
	OrdType    string `json:"ordType"`
	Side       string `json:"side"`
	PosSide    string `json:"posSide"`
	Px         string `json:"px"`
	Sz         string `json:"sz"`
	AccFillSz  string `json:"accFillSz"`
	ReduceOnly string `json:"reduceOnly"`
	CTime      string `json:"cTime"`
}

type positionData struct {
	InstID      string `json:"instId"`
	InstType    string `json:"instType"`
	MgnMode     string `json:"mgnMode"`
	PosSide     string `json:"posSide"` // long / short / net
	Pos         string `json:"pos"`     // контракты, в net-режиме со знаком
	AvgPx       string `json:"avgPx"`
	Last        string `json:"last"`
	MarkPx      string `json:"markPx"`
	Upl         string `json:"upl"`
	UplLastPx   string `json:"uplLastPx"`
	LiqPx       string `json:"liqPx"`
	Lever       string `json:"lever"`
	NotionalUsd string `json:"notionalUsd"`
	CTime       string `json:"cTime"`
}

type orderAck struct {
	OrdID   string `json:"ordId"`
	ClOrdID string `json:"clOrdId"`
	status
}

type algoAck struct {
	AlgoID      string `json:"algoId"`
	AlgoClOrdID string `json:"algoClOrdId"`
	status
}

type leverageAck struct {
	InstID  string `json:"instId"`
	Lever   string `json:"lever"`
	MgnMode string `json:"mgnMode"`
	PosSide string `json:"posSide"`
}
