package repositories

// Collection holds one repository per entity, all bound to the same
// connection or transaction.
type Collection struct {
	Users      UserRepository
	Activities ActivityRepository
	Emissions  EmissionRepository
	Badges     BadgeRepository
}
