package handler

import (
	"hiichat/internal/usecase"
)

var (
	authHandler *AuthHandler
	userHandler *UserHandler
	chatHandler *ChatHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	directoryUseCase *usecase.DirectoryUseCase,
	conversationUseCase *usecase.ConversationUseCase,
	messageUseCase *usecase.MessageUseCase,
	notifierUseCase *usecase.NotifierUseCase,
) {
	authHandler = NewAuthHandler(authUseCase)
	userHandler = NewUserHandler(directoryUseCase, notifierUseCase)
	chatHandler = NewChatHandler(conversationUseCase, messageUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}
