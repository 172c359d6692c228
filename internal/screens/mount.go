package screens

import "github.com/jask/cashflow/internal/scene"

// Mount builds every screen into layer and wires the router and controller
// to deps.Bus.
func Mount(deps Deps, header *Header, layer *scene.Node) (*Router, *Controller, error) {
	router := NewRouter(deps.Bus, header)
	all := []Screen{
		NewTransactions(deps),
		NewMenu(deps),
		NewAccounts(deps),
		NewCategories(deps),
		NewAddTransaction(deps),
		NewSelectTime(deps),
		NewReport(deps),
	}
	for _, s := range all {
		layer.AddChild(s.Node())
		router.Register(s)
	}
	if err := router.Attach(); err != nil {
		router.Release()
		return nil, nil, err
	}
	controller := NewController(deps.Ctx, deps.Editor, deps.Bus)
	if err := controller.Attach(); err != nil {
		router.Release()
		return nil, nil, err
	}
	return router, controller, nil
}
