package rbac

const (
	RoleLearner = "learner"
	RoleAuthor  = "author"
	RoleAdmin   = "admin"
)

// RolePermissions is the built-in policy. Authors manage the question bank
// and reading material; admins can do anything.
var RolePermissions = map[string][]string{
	RoleLearner: {
		"course:view",
		"quiz:take",
		"history:view-own",
		"history:clear-own",
		"progress:*",
		"events:view-own",
		"question:view",
		"profile:*",
	},
	RoleAuthor: {
		"course:view",
		"material:edit",
		"quiz:take",
		"history:view-own",
		"history:clear-own",
		"progress:*",
		"events:view-own",
		"question:*", // view, view-keys, create, delete, import
		"profile:*",
	},
	RoleAdmin: {
		"*", // everything
	},
}
