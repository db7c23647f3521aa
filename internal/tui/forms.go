package tui

import (
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/model"
)

// Field validators. Validation failures are caught here, before any
// request reaches the network layer.

// ValidateRequired rejects empty or whitespace-only input.
func ValidateRequired(field string) func(string) error {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return errors.NewValidationError(field, "must not be empty")
		}
		return nil
	}
}

// ValidateEmail rejects anything that does not parse as an address.
func ValidateEmail(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewValidationError("email", "must not be empty")
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return errors.NewValidationError("email", "must be a valid address")
	}
	return nil
}

// ValidatePrice rejects non-numeric or non-positive prices.
func ValidatePrice(value string) error {
	price, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return errors.NewValidationError("price", "must be a number")
	}
	if price <= 0 {
		return errors.NewValidationError("price", "must be positive")
	}
	return nil
}

// LoginInput is the completed login form.
type LoginInput struct {
	Email    string
	Password string
}

// RunLoginForm collects login credentials.
func RunLoginForm() (LoginInput, error) {
	var in LoginInput

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Email").
			Placeholder("you@company.com").
			Validate(ValidateEmail).
			Value(&in.Email),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Validate(ValidateRequired("password")).
			Value(&in.Password),
	))

	if err := form.Run(); err != nil {
		return LoginInput{}, err
	}
	return in, nil
}

// RunTeamMemberForm collects a team member create or update. When
// existing is non-nil the form edits it and the password is optional.
// Only Admins may assign the Admin role.
func RunTeamMemberForm(existing *model.User, allowAdminRole bool) (api.UpdateUserInput, error) {
	var in api.UpdateUserInput
	if existing != nil {
		in = api.UpdateUserInput{
			UserID:    existing.ID,
			Name:      existing.Name,
			Email:     existing.Email,
			Role:      existing.Role,
			ManagerID: existing.ManagerID,
		}
	} else {
		in.Role = model.RoleEmployee
	}

	roleOptions := []huh.Option[model.Role]{
		huh.NewOption("Manager", model.RoleManager),
		huh.NewOption("Employee", model.RoleEmployee),
	}
	if allowAdminRole {
		roleOptions = append([]huh.Option[model.Role]{huh.NewOption("Admin", model.RoleAdmin)}, roleOptions...)
	}

	passwordField := huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(&in.Password)
	if existing == nil {
		passwordField = passwordField.Validate(ValidateRequired("password"))
	} else {
		passwordField = passwordField.Description("Leave empty to keep the current password")
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Name").
			Validate(ValidateRequired("name")).
			Value(&in.Name),
		huh.NewInput().
			Title("Email").
			Validate(ValidateEmail).
			Value(&in.Email),
		passwordField,
		huh.NewSelect[model.Role]().
			Title("Role").
			Options(roleOptions...).
			Value(&in.Role),
		huh.NewInput().
			Title("Manager ID").
			Description("Optional").
			Value(&in.ManagerID),
	))

	if err := form.Run(); err != nil {
		return api.UpdateUserInput{}, err
	}
	return in, nil
}

// RunProductForm collects a product create or update, including an
// optional image read from a local path.
func RunProductForm(existing *model.Product) (api.ProductInput, error) {
	var in api.ProductInput
	var priceText, imagePath string

	if existing != nil {
		in = api.ProductInput{
			ProductID:   existing.ID,
			Name:        existing.Name,
			Description: existing.Description,
			Price:       existing.Price,
		}
		priceText = strconv.FormatFloat(existing.Price, 'f', -1, 64)
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Name").
			Validate(ValidateRequired("name")).
			Value(&in.Name),
		huh.NewInput().
			Title("Description").
			Validate(ValidateRequired("description")).
			Value(&in.Description),
		huh.NewInput().
			Title("Price").
			Validate(ValidatePrice).
			Value(&priceText),
		huh.NewInput().
			Title("Image path").
			Description("Optional; path to a local image file").
			Validate(validateOptionalFile).
			Value(&imagePath),
	))

	if err := form.Run(); err != nil {
		return api.ProductInput{}, err
	}

	in.Price, _ = strconv.ParseFloat(strings.TrimSpace(priceText), 64)

	if imagePath != "" {
		data, err := os.ReadFile(imagePath)
		if err != nil {
			return api.ProductInput{}, errors.NewValidationError("image", "could not read file")
		}
		in.ImageName = filepath.Base(imagePath)
		in.ImageData = data
	}

	return in, nil
}

func validateOptionalFile(value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if _, err := os.Stat(value); err != nil {
		return errors.NewValidationError("image", "file does not exist")
	}
	return nil
}

// RunOrderForm collects a new order.
func RunOrderForm(products []model.Product) (api.CreateOrderInput, error) {
	var in api.CreateOrderInput

	group := []huh.Field{
		huh.NewInput().
			Title("Customer name").
			Validate(ValidateRequired("customer name")).
			Value(&in.CustomerName),
	}

	if len(products) > 0 {
		options := make([]huh.Option[string], 0, len(products))
		for _, p := range products {
			options = append(options, huh.NewOption(p.Name, p.ID))
		}
		group = append(group, huh.NewSelect[string]().
			Title("Product").
			Options(options...).
			Value(&in.ProductID))
	} else {
		group = append(group, huh.NewInput().
			Title("Product ID").
			Validate(ValidateRequired("product id")).
			Value(&in.ProductID))
	}

	form := huh.NewForm(huh.NewGroup(group...))

	if err := form.Run(); err != nil {
		return api.CreateOrderInput{}, err
	}
	return in, nil
}
