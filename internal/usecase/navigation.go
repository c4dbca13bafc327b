package usecase

import "learning-access/internal/domain/model"

type navEntry struct {
	item model.MenuItem
	// need is the capability required to see the entry; empty means public.
	need model.Capability
	// anonOnly entries disappear once a user is signed in.
	anonOnly bool
}

var navigation = []navEntry{
	{item: model.MenuItem{Key: "home", Label: "Beranda", Path: "/"}},
	{item: model.MenuItem{Key: "programs", Label: "Program", Path: "/programs"}},
	{item: model.MenuItem{Key: "articles", Label: "Artikel", Path: "/articles"}},
	{item: model.MenuItem{Key: "ebooks", Label: "E-book", Path: "/ebooks"}},
	{item: model.MenuItem{Key: "help", Label: "Bantuan", Path: "/help"}},
	{item: model.MenuItem{Key: "dashboard", Label: "Dashboard", Path: "/dashboard"}, need: model.CapViewDashboard},
	{item: model.MenuItem{Key: "admin", Label: "Admin", Path: "/admin"}, need: model.CapViewAdmin},
	{item: model.MenuItem{Key: "admin_codes", Label: "Kode Akses", Path: "/admin/codes"}, need: model.CapManageCodes},
	{item: model.MenuItem{Key: "admin_users", Label: "Pengguna", Path: "/admin/users"}, need: model.CapManageUsers},
	{item: model.MenuItem{Key: "admin_programs", Label: "Kelola Program", Path: "/admin/programs"}, need: model.CapManagePrograms},
	{item: model.MenuItem{Key: "admin_content", Label: "Kelola Konten", Path: "/admin/content"}, need: model.CapManageContent},
	{item: model.MenuItem{Key: "login", Label: "Masuk", Path: "/login"}, anonOnly: true},
	{item: model.MenuItem{Key: "register", Label: "Daftar", Path: "/register"}, anonOnly: true},
}

// BuildNavigation returns the menu visible to session, which may be nil.
// It uses the same capability check as the route guards.
func BuildNavigation(session *model.Session) []model.MenuItem {
	out := make([]model.MenuItem, 0, len(navigation))
	for _, e := range navigation {
		switch {
		case e.anonOnly && session.Authenticated():
			continue
		case e.need != "" && !session.Can(e.need):
			continue
		}
		out = append(out, e.item)
	}
	return out
}
