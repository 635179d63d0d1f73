package handlers

import (
	"net/http"
	"strings"

	"github.com/Krunal123456/Bari/internal/domain/rules"
	"github.com/Krunal123456/Bari/internal/transport/http/dto"
	httperrors "github.com/Krunal123456/Bari/internal/transport/http/errors"
)

// KundliHandler answers the simulated compatibility report. Times and places
// of birth are accepted but do not affect the result.
type KundliHandler struct{}

func NewKundliHandler() *KundliHandler {
	return &KundliHandler{}
}

func (h *KundliHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req dto.KundliRequest
	if err := decodeJSON(r, &req); err != nil {
		httperrors.Write(w, http.StatusBadRequest, dto.KundliResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.DobA) == "" || strings.TrimSpace(req.DobB) == "" {
		httperrors.Write(w, http.StatusBadRequest, dto.KundliResponse{Error: "Both birth dates are required"})
		return
	}
	dobA, errA := rules.ParseBirthDate(req.DobA)
	dobB, errB := rules.ParseBirthDate(req.DobB)
	if errA != nil || errB != nil {
		httperrors.Write(w, http.StatusBadRequest, dto.KundliResponse{Error: "Invalid birth date"})
		return
	}

	match := rules.MatchKundli(dobA, dobB)
	httperrors.Write(w, http.StatusOK, dto.KundliResponse{
		Success: true,
		Data: &dto.KundliData{
			GunaScore: match.GunaScore,
			Manglik:   match.Manglik,
			Verdict:   match.Verdict,
			Details: dto.KundliDetails{
				Summary: match.Summary,
				Breakdown: dto.KundliBreakdown{
					Varna:  match.Breakdown.Varna,
					Vashya: match.Breakdown.Vashya,
					Tara:   match.Breakdown.Tara,
				},
				SignA: match.SignA,
				SignB: match.SignB,
			},
		},
	})
}
