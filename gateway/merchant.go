package gateway

import (
	"net/http"

	"github.com/example/clickmenu/pkg/models"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	StoreIDOrEmail string `json:"storeIdOrEmail" binding:"required_without_all=StoreID Email"`
	StoreID        string `json:"store_id"`
	Email          string `json:"email"`
	Password       string `json:"password" binding:"required_without=Passcode"`
	Passcode       string `json:"passcode"`
}

func (r loginRequest) login() string {
	for _, v := range []string{r.StoreIDOrEmail, r.StoreID, r.Email} {
		if v != "" {
			return v
		}
	}
	return ""
}

func (r loginRequest) secret() string {
	if r.Password != "" {
		return r.Password
	}
	return r.Passcode
}

type statusRequest struct {
	Status  string `json:"status" binding:"required"`
	StoreID string `json:"store_id"`
}

func (g *Gateway) merchantLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}
	session, err := g.services.Stores.Login(c.Request.Context(), req.login(), req.secret())
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"token": session.Token, "profile": session.Store})
}

func (g *Gateway) merchantProfile(c *gin.Context) {
	store, err := g.services.Stores.GetStore(c.Request.Context(), scopeFrom(c), "")
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"profile": store})
}

func (g *Gateway) updateMerchantProfile(c *gin.Context) {
	var patch models.StorePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		g.fail(c, badRequest("body", err.Error()))
		return
	}
	store, err := g.services.Stores.UpdateProfile(c.Request.Context(), scopeFrom(c), patch)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"profile": store})
}

func (g *Gateway) listMerchantItems(c *gin.Context) {
	filter, err := menuFilter(c)
	if err != nil {
		g.fail(c, err)
		return
	}
	page, err := g.services.Menu.ListItems(c.Request.Context(), scopeFrom(c), filter)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"items": page.Items, "total": page.Total, "limit": page.Limit, "offset": page.Offset})
}

func (g *Gateway) upsertMerchantItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		g.fail(c, badRequest("body", err.Error()))
		return
	}
	saved, err := g.services.Menu.UpsertItem(c.Request.Context(), scopeFrom(c), item)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"item": saved})
}

func (g *Gateway) updateMerchantItem(c *gin.Context) {
	var patch models.MenuItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		g.fail(c, badRequest("body", err.Error()))
		return
	}
	scope := scopeFrom(c)
	item, err := g.services.Menu.UpdateItem(c.Request.Context(), scope, scope.StoreID, c.Param("itemId"), patch)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"item": item})
}

func (g *Gateway) archiveMerchantItem(c *gin.Context) {
	scope := scopeFrom(c)
	item, err := g.services.Menu.ArchiveItem(c.Request.Context(), scope, scope.StoreID, c.Param("itemId"))
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"item": item})
}

func (g *Gateway) listMerchantOrders(c *gin.Context) {
	g.listOrders(c)
}

func (g *Gateway) updateMerchantOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}
	scope := scopeFrom(c)
	order, err := g.services.Orders.UpdateStatus(c.Request.Context(), scope, scope.StoreID, c.Param("requestId"), req.Status)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"request": order})
}

func (g *Gateway) merchantAnalytics(c *gin.Context) {
	summary, err := g.services.Analytics.MerchantAnalytics(c.Request.Context(), scopeFrom(c), "")
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"analytics": summary})
}

// listOrders serves both audiences; the scope decides which stores are visible.
func (g *Gateway) listOrders(c *gin.Context) {
	filter, err := orderFilter(c)
	if err != nil {
		g.fail(c, err)
		return
	}
	page, err := g.services.Orders.ListOrders(c.Request.Context(), scopeFrom(c), filter)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"orders": page.Items, "total": page.Total, "limit": page.Limit, "offset": page.Offset})
}
