package cmd

import (
	"fmt"

	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/model"
)

func errOrderNotFound(id string) error {
	return errors.New(errors.ErrCodeAPINotFound, fmt.Sprintf("no order with id %s", id)).
		WithSuggestion("Run 'opsdeck order list' to look up the id")
}

func errOrderFinal(order model.Order) error {
	return errors.New(errors.ErrCodeValidationRange,
		fmt.Sprintf("order for %s is already %s", order.CustomerName, order.Status)).
		WithSuggestion("Only Pending orders can change status")
}
