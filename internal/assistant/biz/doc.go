// Package biz implements the assistant's business logic: the model
// gateway, chat intent routing, file intake and knowledge search.
package biz
