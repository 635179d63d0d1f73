package dto

type KundliRequest struct {
	DobA string `json:"dobA"`
	TobA string `json:"tobA"`
	PobA string `json:"pobA"`
	DobB string `json:"dobB"`
	TobB string `json:"tobB"`
	PobB string `json:"pobB"`
}

type KundliBreakdown struct {
	Varna  int `json:"varna"`
	Vashya int `json:"vashya"`
	Tara   int `json:"tara"`
}

type KundliDetails struct {
	Summary   string          `json:"summary"`
	Breakdown KundliBreakdown `json:"breakdown"`
	SignA     string          `json:"signA"`
	SignB     string          `json:"signB"`
}

type KundliData struct {
	GunaScore int           `json:"gunaScore"`
	Manglik   bool          `json:"manglik"`
	Verdict   string        `json:"verdict"`
	Details   KundliDetails `json:"details"`
}

type KundliResponse struct {
	Success bool        `json:"success"`
	Data    *KundliData `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
