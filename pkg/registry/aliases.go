package registry

// localizedAliases maps historically accepted Portuguese permission names to
// their canonical English entries. Earlier deployments stored these strings
// on profiles; resolving them here keeps call sites free of ad-hoc string
// matching.
func localizedAliases() map[string]string {
	return map[string]string{
		"Listar Quadros":        "List Boards",
		"Criar Quadros":         "Create Boards",
		"Editar Quadros":        "Edit Boards",
		"Excluir Quadros":       "Delete Boards",
		"Visualizar Quadros":    "View Boards",
		"Gerenciar Quadros":     "Manage Boards",
		"Criar Colunas":         "Create Columns",
		"Editar Colunas":        "Edit Columns",
		"Excluir Colunas":       "Delete Columns",
		"Listar Tarefas":        "List Tasks",
		"Criar Tarefas":         "Create Tasks",
		"Editar Tarefas":        "Edit Tasks",
		"Excluir Tarefas":       "Delete Tasks",
		"Visualizar Tarefas":    "View Tasks",
		"Atribuir Tarefas":      "Assign Tasks",
		"Listar Equipes":        "List Teams",
		"Criar Equipes":         "Create Teams",
		"Editar Equipes":        "Edit Teams",
		"Excluir Equipes":       "Delete Teams",
		"Visualizar Equipes":    "View Teams",
		"Gerenciar Equipes":     "Manage Teams",
		"Listar Usuários":       "List Users",
		"Criar Usuários":        "Create Users",
		"Editar Usuários":       "Edit Users",
		"Excluir Usuários":      "Delete Users",
		"Visualizar Usuários":   "View Users",
		"Gerenciar Usuários":    "Manage Users",
		"Listar Perfis":         "List Profiles",
		"Criar Perfis":          "Create Profiles",
		"Editar Perfis":         "Edit Profiles",
		"Excluir Perfis":        "Delete Profiles",
		"Visualizar Perfis":     "View Profiles",
		"Atribuir Perfis":       "Assign Profiles",
		"Listar Relatórios":     "List Reports",
		"Visualizar Relatórios": "View Reports",
	}
}
