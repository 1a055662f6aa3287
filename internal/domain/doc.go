// Package domain defines the core business entities of the card-account
// system (users and bank cards), their validation rules, and the lifecycle
// checks that gate every mutating operation.
package domain
