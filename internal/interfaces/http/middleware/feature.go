package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FeatureResolver reports whether a feature is enabled for a tenant,
// after layering tenant overrides on top of the plan's grants.
type FeatureResolver interface {
	IsFeatureEnabled(ctx context.Context, tenantID uuid.UUID, featureKey string) (bool, error)
}

// FeatureGateConfig holds configuration for the feature gate middleware
type FeatureGateConfig struct {
	Resolver FeatureResolver
	Logger   *zap.Logger
}

// RequireFeature creates middleware that lets a request through only when
// the tenant's resolved entitlement enables the feature. Resolution errors
// deny access: a gate that cannot be checked stays closed.
func RequireFeature(featureKey string, cfg FeatureGateConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantIDStr := GetJWTTenantID(c)
		if tenantIDStr == "" {
			denyFeature(c, featureKey, "No tenant context found")
			return
		}
		tenantID, err := uuid.Parse(tenantIDStr)
		if err != nil {
			denyFeature(c, featureKey, "Invalid tenant context")
			return
		}

		enabled, err := cfg.Resolver.IsFeatureEnabled(c.Request.Context(), tenantID, featureKey)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("Feature resolution failed",
					zap.String("tenant_id", tenantIDStr),
					zap.String("feature", featureKey),
					zap.Error(err))
			}
			denyFeature(c, featureKey, "Failed to verify feature access")
			return
		}
		if !enabled {
			if cfg.Logger != nil {
				cfg.Logger.Info("Feature access denied",
					zap.String("tenant_id", tenantIDStr),
					zap.String("feature", featureKey))
			}
			denyFeature(c, featureKey, "")
			return
		}

		c.Next()
	}
}

func denyFeature(c *gin.Context, featureKey, customMessage string) {
	message := customMessage
	if message == "" {
		message = fmt.Sprintf("The %s feature is not available on your current plan. Please upgrade to access it.",
			formatFeatureName(featureKey))
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_FEATURE_NOT_AVAILABLE",
			"message": message,
			"details": gin.H{
				"feature": featureKey,
			},
		},
	})
}

// formatFeatureName converts a feature key to a human-readable name
func formatFeatureName(featureKey string) string {
	name := strings.ReplaceAll(featureKey, "_", " ")
	words := strings.Fields(name)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
