// Package service provides application-level services for managing users,
// cards, and balance transfers. Services enforce the business rules on top
// of the store layer and are the only place transactions are coordinated.
package service
