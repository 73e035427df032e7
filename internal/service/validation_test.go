package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		want    string
		wantErr error
	}{
		{"empty", "", "", ErrEmailRequired},
		{"no_at", "not-an-email", "", ErrInvalidEmail},
		{"missing_local", "@example.com", "", ErrInvalidEmail},
		{"missing_domain", "user@", "", ErrInvalidEmail},
		{"valid", "user@example.com", "user@example.com", nil},
		{"domain_lowercased", "Test2@Example.com", "Test2@example.com", nil},
		{"local_part_preserved", "TEST3@EXAMPLE.COM", "TEST3@example.com", nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := validateEmail(test.email)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
			if got != test.want {
				t.Errorf("validateEmail(%q) = %q, want %q", test.email, got, test.want)
			}
		})
	}
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	svc := NewUserService(nil, nil)

	// Four characters is below the minimum of five; rejected before any
	// hashing or storage happens.
	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Password: "1234",
	})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestValidateRecipeFields(t *testing.T) {
	price := decimal.RequireFromString

	tests := []struct {
		name        string
		title       string
		timeMinutes int
		price       decimal.Decimal
		link        string
		wantErr     error
	}{
		{"valid", "Sample recipe", 30, price("5.99"), "", nil},
		{"empty_title", "", 30, price("5.99"), "", ErrTitleRequired},
		{"whitespace_title", "   ", 30, price("5.99"), "", ErrTitleRequired},
		{"title_too_long", strings.Repeat("a", maxTitleLength+1), 30, price("5.99"), "", ErrTitleTooLong},
		{"negative_minutes", "Sample", -1, price("5.99"), "", ErrInvalidTimeMinutes},
		{"zero_minutes_ok", "Sample", 0, price("5.99"), "", nil},
		{"negative_price", "Sample", 30, price("-1.00"), "", ErrInvalidPrice},
		{"price_too_large", "Sample", 30, price("1000.00"), "", ErrInvalidPrice},
		{"price_too_precise", "Sample", 30, price("5.999"), "", ErrInvalidPrice},
		{"max_price_ok", "Sample", 30, price("999.99"), "", nil},
		{"free_recipe_ok", "Sample", 30, price("0"), "", nil},
		{"link_too_long", "Sample", 30, price("5.99"), "https://example.com/" + strings.Repeat("x", maxLinkLength), ErrLinkTooLong},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := validateRecipeFields(test.title, test.timeMinutes, test.price, test.link)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestCleanNames(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []string
		wantErr error
	}{
		{"nil", nil, []string{}, nil},
		{"trims", []string{"  Vegan "}, []string{"Vegan"}, nil},
		{"dedupes_preserving_order", []string{"Dinner", "Vegan", "Dinner"}, []string{"Dinner", "Vegan"}, nil},
		{"case_sensitive", []string{"vegan", "Vegan"}, []string{"vegan", "Vegan"}, nil},
		{"empty_name", []string{"Dinner", " "}, nil, ErrNameRequired},
		{"too_long", []string{strings.Repeat("a", maxNameLength+1)}, nil, ErrNameTooLong},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := cleanNames(test.input)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
			if err == nil && !reflect.DeepEqual(got, test.want) {
				t.Errorf("cleanNames(%v) = %v, want %v", test.input, got, test.want)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"valid", "Dessert", "Dessert", nil},
		{"trims", " Dessert ", "Dessert", nil},
		{"empty", "", "", ErrNameRequired},
		{"whitespace", "   ", "", ErrNameRequired},
		{"too_long", strings.Repeat("a", maxNameLength+1), "", ErrNameTooLong},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := validateName(test.input)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
			if got != test.want {
				t.Errorf("validateName(%q) = %q, want %q", test.input, got, test.want)
			}
		})
	}
}
