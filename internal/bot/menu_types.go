package bot

import "github.com/UnknownOlympus/nomina/internal/records"

// MenuType represents different menu screens in the bot.
type MenuType string

const (
	MenuMain        MenuType = "main"
	MenuEmployees   MenuType = "employees"
	MenuSalespeople MenuType = "salespeople"
)

// Handler names bound to menu buttons.
const (
	handlerLanguage   = "language"
	handlerSetID      = "set_id"
	handlerDatabase   = "database"
	handlerGet        = "get"
	handlerCreate     = "create"
	handlerUpdate     = "update"
	handlerDelete     = "delete"
	handlerEdit       = "edit"
	handlerActivate   = "activate"
	handlerDeactivate = "deactivate"
	handlerExport     = "export"
	handlerClear      = "clear"
	handlerBack       = "back"
)

// MenuButton represents a single button in a menu.
type MenuButton struct {
	TextKey string   // i18n key for button text
	Handler string   // Handler name, empty when the button opens SubMenu
	SubMenu MenuType // If this button opens a submenu
}

// MenuDefinition represents a complete menu screen.
type MenuDefinition struct {
	Type     MenuType
	TitleKey string // i18n key for menu title, sent with the keyboard
	Entity   string // record entity managed on this screen, empty for navigation menus
	Parent   MenuType
	Buttons  []MenuButton
	Layout   []int // Button layout: [2, 2, 1] means 2+2+1 buttons per row
	HasBack  bool  // Whether to show back button
}

// MenuRegistry holds all menu definitions.
type MenuRegistry struct {
	menus map[MenuType]*MenuDefinition
	order []MenuType
}

// NewMenuRegistry creates and initializes the menu registry with all menu definitions.
func NewMenuRegistry() *MenuRegistry {
	registry := &MenuRegistry{
		menus: make(map[MenuType]*MenuDefinition),
	}

	registry.register(&MenuDefinition{
		Type:     MenuMain,
		TitleKey: "home.title",
		Layout:   []int{2, 1},
		Buttons: []MenuButton{
			{TextKey: "menu.employees", SubMenu: MenuEmployees},
			{TextKey: "menu.salespeople", SubMenu: MenuSalespeople},
			{TextKey: "menu.language", Handler: handlerLanguage},
		},
	})
	registry.register(&MenuDefinition{
		Type:     MenuEmployees,
		TitleKey: "employees.title",
		Entity:   records.EntityEmployee,
		Parent:   MenuMain,
		Layout:   []int{2, 2, 2, 2, 2, 1},
		HasBack:  true,
		Buttons: append(recordButtons(),
			MenuButton{TextKey: "menu.activate", Handler: handlerActivate},
			MenuButton{TextKey: "menu.deactivate", Handler: handlerDeactivate},
			MenuButton{TextKey: "menu.clear", Handler: handlerClear},
		),
	})
	registry.register(&MenuDefinition{
		Type:     MenuSalespeople,
		TitleKey: "salespeople.title",
		Entity:   records.EntitySalesperson,
		Parent:   MenuMain,
		Layout:   []int{2, 2, 2, 2, 1},
		HasBack:  true,
		Buttons:  append(recordButtons(), MenuButton{TextKey: "menu.clear", Handler: handlerClear}),
	})

	return registry
}

// recordButtons are shared by every record screen.
func recordButtons() []MenuButton {
	return []MenuButton{
		{TextKey: "menu.set_id", Handler: handlerSetID},
		{TextKey: "menu.database", Handler: handlerDatabase},
		{TextKey: "menu.get", Handler: handlerGet},
		{TextKey: "menu.delete", Handler: handlerDelete},
		{TextKey: "menu.edit", Handler: handlerEdit},
		{TextKey: "menu.create", Handler: handlerCreate},
		{TextKey: "menu.update", Handler: handlerUpdate},
		{TextKey: "menu.export", Handler: handlerExport},
	}
}

func (r *MenuRegistry) register(def *MenuDefinition) {
	r.menus[def.Type] = def
	r.order = append(r.order, def.Type)
}

// Get retrieves a menu definition by type.
func (r *MenuRegistry) Get(menuType MenuType) *MenuDefinition {
	return r.menus[menuType]
}

// All returns the menu definitions in registration order.
func (r *MenuRegistry) All() []*MenuDefinition {
	defs := make([]*MenuDefinition, 0, len(r.order))
	for _, menuType := range r.order {
		defs = append(defs, r.menus[menuType])
	}
	return defs
}
