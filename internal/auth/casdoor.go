package auth

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/text-answer-service/internal/config"
	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenParser turns a bearer token into the caller's identity
type TokenParser interface {
	Parse(token string) (*models.UserContext, error)
}

type CasdoorTokenParser struct {
	client *casdoorsdk.Client
}

func NewCasdoorTokenParser(cfg config.CasdoorConfig) *CasdoorTokenParser {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.OrganizationName,
		cfg.ApplicationName,
	)
	return &CasdoorTokenParser{client: client}
}

func (p *CasdoorTokenParser) Parse(token string) (*models.UserContext, error) {
	claims, err := p.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return UserContextFromCasdoor(&claims.User), nil
}

// UserContextFromCasdoor maps casdoor roles and permissions whose names match a
// capability onto that capability. A role named "admin" grants everything.
func UserContextFromCasdoor(user *casdoorsdk.User) *models.UserContext {
	uc := &models.UserContext{
		UserID:  user.Id,
		Name:    user.Name,
		IsAdmin: user.IsAdmin,
	}
	if uc.UserID == "" {
		uc.UserID = user.Owner + "/" + user.Name
	}

	seen := make(map[models.Capability]bool)
	grant := func(name string) {
		if name == "admin" {
			uc.IsAdmin = true
			return
		}
		capability, ok := knownCapabilities[name]
		if !ok || seen[capability] {
			return
		}
		seen[capability] = true
		uc.Capabilities = append(uc.Capabilities, capability)
	}

	for _, role := range user.Roles {
		if role != nil {
			grant(role.Name)
		}
	}
	for _, permission := range user.Permissions {
		if permission != nil {
			grant(permission.Name)
		}
	}
	return uc
}

var knownCapabilities = map[string]models.Capability{
	string(models.CapabilityScoreAny):        models.CapabilityScoreAny,
	string(models.CapabilityScoreOwn):        models.CapabilityScoreOwn,
	string(models.CapabilityScoreTaken):      models.CapabilityScoreTaken,
	string(models.CapabilityViewCorrect):     models.CapabilityViewCorrect,
	string(models.CapabilityDeleteResponses): models.CapabilityDeleteResponses,
}
