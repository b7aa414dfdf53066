package domain

import (
	"strings"
	"time"
)

// Outcome identifica uno de los dos lados de un mercado binario.
type Outcome string

const (
	OutcomeYes Outcome = "Yes"
	OutcomeNo  Outcome = "No"
)

// Opposite devuelve el lado contrario.
func (o Outcome) Opposite() Outcome {
	if o == OutcomeYes {
		return OutcomeNo
	}
	return OutcomeYes
}

// ParseOutcome normaliza el label de la API ("yes", "NO", ...) a Outcome.
// Devuelve false si el label no corresponde a ninguno de los dos lados.
func ParseOutcome(s string) (Outcome, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes":
		return OutcomeYes, true
	case "no":
		return OutcomeNo, true
	}
	return "", false
}

// Market representa un mercado de predicción binario en Polymarket.
type Market struct {
	ConditionID  string
	GammaID      string // id numérico en Gamma
	Question     string
	Slug         string
	EndDate      time.Time
	Volume24h    float64 // volumen últimas 24h en USDC, enriquecido desde Gamma
	MinOrderSize float64 // tamaño mínimo de orden en shares
	TickSize     float64 // tick mínimo de precio (0.01 o 0.001)
	NegRisk      bool    // true si el mercado usa el adapter NegRisk
	Tokens       [2]Token
	Rewards      RewardConfig
	Active       bool
	Closed       bool
}

// Token es uno de los dos lados del mercado (YES/NO).
type Token struct {
	TokenID string
	Outcome Outcome
}

// RewardConfig contiene la configuración de rewards de liquidez del mercado.
type RewardConfig struct {
	// DailyRate es el total de USDC/día distribuidos entre los LPs.
	DailyRate float64
	// MinSize es el tamaño mínimo de orden para calificar al reward.
	MinSize float64
	// MaxSpread es la distancia máxima al midpoint para calificar.
	MaxSpread float64
}

// HasRewards devuelve true si el mercado tiene rewards activos configurados.
func (m Market) HasRewards() bool {
	return m.Rewards.DailyRate > 0 && m.Rewards.MaxSpread > 0
}

// HoursToResolution devuelve las horas hasta que el mercado se resuelve.
// Devuelve 0 si EndDate no está definido.
func (m Market) HoursToResolution() float64 {
	if m.EndDate.IsZero() {
		return 0
	}
	h := time.Until(m.EndDate).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// YesToken devuelve el token YES del mercado.
func (m Market) YesToken() Token {
	return m.TokenFor(OutcomeYes)
}

// NoToken devuelve el token NO del mercado.
func (m Market) NoToken() Token {
	return m.TokenFor(OutcomeNo)
}

// TokenFor devuelve el token del outcome dado.
func (m Market) TokenFor(o Outcome) Token {
	for _, t := range m.Tokens {
		if t.Outcome == o {
			return t
		}
	}
	if o == OutcomeNo {
		return m.Tokens[1]
	}
	return m.Tokens[0]
}

// OutcomeOf devuelve el outcome al que pertenece un tokenID.
// Devuelve false si el token no es de este mercado.
func (m Market) OutcomeOf(tokenID string) (Outcome, bool) {
	for _, t := range m.Tokens {
		if t.TokenID == tokenID {
			return t.Outcome, true
		}
	}
	return "", false
}

// TruncateQuestion devuelve la pregunta del mercado truncada a maxLen caracteres.
// Si la pregunta está vacía usa los primeros caracteres del conditionID como fallback.
func TruncateQuestion(question, conditionID string, maxLen int) string {
	q := question
	if q == "" {
		if len(conditionID) > 20 {
			q = conditionID[:20] + "..."
		} else {
			q = conditionID
		}
	}
	if len(q) > maxLen {
		q = q[:maxLen-3] + "..."
	}
	return q
}
