package gateway

import (
	"net/http"

	"github.com/example/clickmenu/pkg/models"
	"github.com/example/clickmenu/pkg/service"
	"github.com/gin-gonic/gin"
)

type createStoreRequest struct {
	StoreID      string             `json:"store_id" binding:"required"`
	Name         string             `json:"name" binding:"required"`
	Status       models.StoreStatus `json:"status"`
	Authorized   bool               `json:"authorized"`
	WhatsApp     string             `json:"whatsapp"`
	ProfileEmail string             `json:"profile_email" binding:"omitempty,email"`
	LogoURL      string             `json:"logo_url"`
	Parish       string             `json:"parish"`
	Passcode     string             `json:"passcode"`
}

type storeRefRequest struct {
	StoreID    string `json:"store_id"`
	StoreIDAlt string `json:"storeId"`
}

func (r storeRefRequest) id() string {
	if r.StoreID != "" {
		return r.StoreID
	}
	return r.StoreIDAlt
}

// storeIDsRequest names at least one store under either casing.
type storeIDsRequest struct {
	StoreIDs    []string `json:"store_ids" binding:"omitempty,min=1,dive,required"`
	StoreIDsAlt []string `json:"storeIds" binding:"required_without=StoreIDs,omitempty,min=1,dive,required"`
}

type bulkRequest struct {
	storeIDsRequest
	Action service.BulkAction `json:"action" binding:"required,oneof=activate pause"`
}

func (r storeIDsRequest) ids() []string {
	if len(r.StoreIDs) > 0 {
		return r.StoreIDs
	}
	return r.StoreIDsAlt
}

func (g *Gateway) adminLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}
	session, err := g.services.Stores.AdminLogin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"token": session.Token})
}

func (g *Gateway) listStores(c *gin.Context) {
	page, err := g.services.Stores.ListStores(c.Request.Context(), scopeFrom(c), storeFilter(c))
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"stores": page.Items, "total": page.Total, "limit": page.Limit, "offset": page.Offset})
}

func (g *Gateway) createStore(c *gin.Context) {
	var req createStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}
	creds, err := g.services.Stores.CreateStore(c.Request.Context(), scopeFrom(c), service.NewStore{
		StoreID:      req.StoreID,
		Name:         req.Name,
		Status:       req.Status,
		Authorized:   req.Authorized,
		WhatsApp:     req.WhatsApp,
		ProfileEmail: req.ProfileEmail,
		LogoURL:      req.LogoURL,
		Parish:       req.Parish,
		Passcode:     req.Passcode,
	})
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"store": creds.Store, "passcode": creds.Passcode})
}

func (g *Gateway) getStore(c *gin.Context) {
	store, err := g.services.Stores.GetStore(c.Request.Context(), scopeFrom(c), c.Param("storeId"))
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"store": store})
}

func (g *Gateway) updateStore(c *gin.Context) {
	var patch models.StorePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		g.fail(c, badRequest("body", err.Error()))
		return
	}
	store, err := g.services.Stores.UpdateStore(c.Request.Context(), scopeFrom(c), c.Param("storeId"), patch)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"store": store})
}

func (g *Gateway) resetPasscode(c *gin.Context) {
	var req storeRefRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.id() == "" {
		abort(c, http.StatusBadRequest, "storeId required")
		return
	}
	creds, err := g.services.Stores.ResetPasscode(c.Request.Context(), scopeFrom(c), req.id())
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"store_id": creds.Store.StoreID, "passcode": creds.Passcode})
}

func (g *Gateway) bulkUpdateStores(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}
	res, err := g.services.Stores.BulkUpdateStatus(c.Request.Context(), scopeFrom(c), req.ids(), req.Action)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"succeeded": res.Succeeded, "failed": res.Failed})
}

func (g *Gateway) bulkResetPasscodes(c *gin.Context) {
	var req storeIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}
	res, err := g.services.Stores.BulkResetPasscodes(c.Request.Context(), scopeFrom(c), req.ids())
	if err != nil {
		g.fail(c, err)
		return
	}
	passcodes := make(map[string]string, len(res.Passcodes))
	for _, p := range res.Passcodes {
		passcodes[p.Store.StoreID] = p.Passcode
	}
	respond(c, http.StatusOK, gin.H{"succeeded": res.Succeeded, "failed": res.Failed, "passcodes": passcodes})
}

func (g *Gateway) listAdminOrders(c *gin.Context) {
	g.listOrders(c)
}

func (g *Gateway) updateAdminOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}
	order, err := g.services.Orders.UpdateStatus(c.Request.Context(), scopeFrom(c), req.StoreID, c.Param("requestId"), req.Status)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"request": order})
}

func (g *Gateway) listAdminItems(c *gin.Context) {
	g.listMerchantItems(c)
}

func (g *Gateway) updateAdminItem(c *gin.Context) {
	var patch models.MenuItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		g.fail(c, badRequest("body", err.Error()))
		return
	}
	item, err := g.services.Menu.UpdateItem(c.Request.Context(), scopeFrom(c), c.Param("storeId"), c.Param("itemId"), patch)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"item": item})
}

// deleteAdminItem hides the item. Menu items are never removed.
func (g *Gateway) deleteAdminItem(c *gin.Context) {
	item, err := g.services.Menu.ArchiveItem(c.Request.Context(), scopeFrom(c), c.Param("storeId"), c.Param("itemId"))
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"item": item})
}

func (g *Gateway) platformAnalytics(c *gin.Context) {
	summary, err := g.services.Analytics.PlatformAnalytics(c.Request.Context(), scopeFrom(c))
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"summary": summary})
}
