package controllers

import (
	"errors"
	"strconv"

	"github.com/luca0405/bean-stalker-app2-sub000/entity"
	"github.com/luca0405/bean-stalker-app2-sub000/pkg/money"
	"github.com/luca0405/bean-stalker-app2-sub000/pkg/resp"
	"github.com/luca0405/bean-stalker-app2-sub000/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// menuItemView adds the formatted price alongside the raw cents.
type menuItemView struct {
	entity.MenuItem
	PriceDisplay string `json:"priceDisplay"`
}

func toView(item entity.MenuItem) menuItemView {
	return menuItemView{MenuItem: item, PriceDisplay: money.Format(item.PriceCents)}
}

type MenuController struct {
	menu *services.MenuService
}

func NewMenuController(menu *services.MenuService) *MenuController {
	return &MenuController{menu: menu}
}

// GET /menu
func (m *MenuController) List(c *gin.Context) {
	items, err := m.menu.GetMenuItems()
	if err != nil {
		resp.ServerError(c, err); return
	}
	views := make([]menuItemView, 0, len(items))
	for _, item := range items {
		views = append(views, toView(item))
	}
	resp.OK(c, views)
}

// GET /menu/:id
func (m *MenuController) Detail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		resp.BadRequest(c, "invalid item id"); return
	}
	item, err := m.menu.GetMenuItemByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resp.NotFound(c, "item not found"); return
		}
		resp.ServerError(c, err); return
	}
	resp.OK(c, toView(*item))
}

// GET /menu/:id/options
func (m *MenuController) Options(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		resp.BadRequest(c, "invalid item id"); return
	}
	groups, err := m.menu.GetMenuItemOptions(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resp.NotFound(c, "item not found"); return
		}
		resp.ServerError(c, err); return
	}
	if groups == nil {
		groups = []services.ItemOptions{}
	}
	resp.OK(c, groups)
}

// GET /categories
func (m *MenuController) Categories(c *gin.Context) {
	categories, err := m.menu.GetAllCategories()
	if err != nil {
		resp.ServerError(c, err); return
	}
	resp.OK(c, categories)
}
