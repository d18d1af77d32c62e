// Package memory implements the repository interfaces over mutex-guarded
// maps. It backs the test server and the "memory" store backend; nothing
// survives a restart.
package memory

import "github.com/dom/qa-assessment/internal/repository"

func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		User:    NewUserRepository(),
		Session: NewSessionRepository(),
		Post:    NewPostRepository(),
	}
}
