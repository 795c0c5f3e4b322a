package bridgemodels

import (
	"fmt"
	"time"
)

type PollCommandsRequest struct {
	TerminalID    string `schema:"terminal_id,required"`
	AccountNumber string `schema:"account_number,required"`
}

type CommandLegDTO struct {
	Ticker     string  `json:"ticker"`
	Strike     float64 `json:"strike"`
	Type       string  `json:"type"`
	Expiration string  `json:"expiration"`
	Quantity   float64 `json:"quantity"`
	Action     string  `json:"action"`
}

func (dto CommandLegDTO) ToCommandLeg() (CommandLeg, error) {
	expiration, err := time.Parse("2006-01-02", dto.Expiration)
	if err != nil {
		return CommandLeg{}, fmt.Errorf("CommandLegDTO.ToCommandLeg: invalid expiration %q: %w", dto.Expiration, err)
	}

	leg := CommandLeg{
		Ticker:     StockSymbol(dto.Ticker),
		Strike:     dto.Strike,
		OptionType: OptionType(dto.Type),
		Expiration: expiration,
		Quantity:   dto.Quantity,
		Action:     LegAction(dto.Action),
	}

	if err := leg.Validate(); err != nil {
		return CommandLeg{}, fmt.Errorf("CommandLegDTO.ToCommandLeg: %w", err)
	}

	return leg, nil
}

func NewCommandLegDTO(leg CommandLeg) CommandLegDTO {
	return CommandLegDTO{
		Ticker:     string(leg.Ticker),
		Strike:     leg.Strike,
		Type:       string(leg.OptionType),
		Expiration: leg.Expiration.Format("2006-01-02"),
		Quantity:   leg.Quantity,
		Action:     string(leg.Action),
	}
}

type CommandDTO struct {
	ID       string        `json:"id"`
	Type     string        `json:"type"`
	CloseLeg CommandLegDTO `json:"close_leg"`
	OpenLeg  CommandLegDTO `json:"open_leg"`
}

func NewCommandDTO(cmd *RollCommand) CommandDTO {
	return CommandDTO{
		ID:       cmd.ID.String(),
		Type:     string(cmd.Type),
		CloseLeg: NewCommandLegDTO(cmd.CloseLeg),
		OpenLeg:  NewCommandLegDTO(cmd.OpenLeg),
	}
}

type PollCommandsResponse struct {
	Commands []CommandDTO `json:"commands"`
}
