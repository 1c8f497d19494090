package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	billingapp "github.com/sitepulse/backend/internal/application/billing"
	"github.com/sitepulse/backend/internal/domain/billing"
)

// UsageHandler handles usage metering HTTP requests
type UsageHandler struct {
	BaseHandler
	usageMeter *billingapp.UsageMeter
	quotaGuard *billingapp.QuotaGuard
}

// NewUsageHandler creates a new usage handler
func NewUsageHandler(usageMeter *billingapp.UsageMeter, quotaGuard *billingapp.QuotaGuard) *UsageHandler {
	return &UsageHandler{usageMeter: usageMeter, quotaGuard: quotaGuard}
}

// UsageLogView is the outward shape of one metering window entry
type UsageLogView struct {
	ID          string `json:"id"`
	MetricKey   string `json:"metric_key"`
	Value       int64  `json:"value"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

// UsageSummaryView is the outward shape of the tenant's standing counts
type UsageSummaryView struct {
	TenantID                string `json:"tenant_id"`
	ProjectCount            int    `json:"project_count"`
	DomainCount             int    `json:"domain_count"`
	MemberCount             int    `json:"member_count"`
	OrgAdminCount           int    `json:"org_admin_count"`
	AutomationRunsThisMonth int    `json:"automation_runs_this_month"`
	LastCalculatedAt        string `json:"last_calculated_at"`
}

func toUsageLogView(l *billing.UsageLog) UsageLogView {
	return UsageLogView{
		ID:          l.ID.String(),
		MetricKey:   l.MetricKey,
		Value:       l.Value,
		PeriodStart: l.PeriodStart.Format(time.RFC3339),
		PeriodEnd:   l.PeriodEnd.Format(time.RFC3339),
	}
}

func toUsageSummaryView(u *billing.TenantUsage) UsageSummaryView {
	return UsageSummaryView{
		TenantID:                u.TenantID.String(),
		ProjectCount:            u.ProjectCount,
		DomainCount:             u.DomainCount,
		MemberCount:             u.MemberCount,
		OrgAdminCount:           u.OrgAdminCount,
		AutomationRunsThisMonth: u.AutomationRunsThisMonth,
		LastCalculatedAt:        u.LastCalculatedAt.Format(time.RFC3339),
	}
}

// RegisterRoutes registers usage metering routes for the caller's tenant
func (h *UsageHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/usage", h.List)
	rg.GET("/usage/check/:metric", h.CheckQuota)
	rg.GET("/usage/period/:metric", h.GetForPeriod)
}

// RegisterAdminRoutes registers the reconciliation route; it is expected
// to sit behind the org admin gate.
func (h *UsageHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/usage/reconcile", h.Reconcile)
}

// List returns recent metering windows for the caller's tenant
func (h *UsageHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			h.BadRequest(c, "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	logs, err := h.usageMeter.ListUsage(c.Request.Context(), tenantID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	views := make([]UsageLogView, 0, len(logs))
	for i := range logs {
		views = append(views, toUsageLogView(&logs[i]))
	}
	h.Success(c, views)
}

// CheckQuota reports the caller tenant's remaining allowance for a metric
// without consuming any of it.
func (h *UsageHandler) CheckQuota(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	result, err := h.usageMeter.CheckQuota(c.Request.Context(), tenantID, c.Param("metric"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetForPeriod sums a metric over an explicit window given as RFC 3339
// from and to query parameters.
func (h *UsageHandler) GetForPeriod(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		h.BadRequest(c, "from must be an RFC 3339 timestamp")
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		h.BadRequest(c, "to must be an RFC 3339 timestamp")
		return
	}
	if !to.After(from) {
		h.BadRequest(c, "to must be after from")
		return
	}

	metric := c.Param("metric")
	total, err := h.usageMeter.GetUsageForPeriod(c.Request.Context(), tenantID, metric, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{
		"metric_key": metric,
		"from":       from.Format(time.RFC3339),
		"to":         to.Format(time.RFC3339),
		"total":      total,
	})
}

// Reconcile recounts the caller tenant's standing resources from source
// tables and returns the corrected summary.
func (h *UsageHandler) Reconcile(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	usage, err := h.quotaGuard.Reconcile(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toUsageSummaryView(usage))
}
