package handler

import (
	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"

	boardvalidator "ria-board/src/validator"
)

// Ginのバインディングエンジンへカスタムバリデーションルールを登録する
func init() {
	if v, ok := binding.Validator.Engine().(*playground.Validate); ok {
		boardvalidator.RegisterValidations(v)
	}
}
