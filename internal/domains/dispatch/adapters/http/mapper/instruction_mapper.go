// Package mapper translates between HTTP payloads and the dispatch domain.
package mapper

import (
	dispatchports "github.com/vendibd/vendi-server/internal/domains/dispatch/ports"
)

// PollResponse is the single instruction handed to a polling device. Command is
// null when the device has nothing to do.
type PollResponse struct {
	Command   *string `json:"command"`
	CommandID string  `json:"commandId,omitempty"`
	OrderID   string  `json:"orderId,omitempty"`
	ProductID string  `json:"productId,omitempty"`
}

// FromInstruction maps the poll decision into its wire form.
func FromInstruction(instruction *dispatchports.Instruction) PollResponse {
	if instruction == nil || instruction.Kind == dispatchports.InstructionNone {
		return PollResponse{}
	}
	kind := string(instruction.Kind)
	resp := PollResponse{Command: &kind, OrderID: instruction.OrderID.String()}
	if instruction.Kind == dispatchports.InstructionVend {
		resp.CommandID = instruction.CommandID.String()
		resp.ProductID = instruction.ProductID
	}
	return resp
}

// StatusReport captures a device's terminal command report.
type StatusReport struct {
	Status  string `json:"status" binding:"required"`
	Message string `json:"message,omitempty"`
}
