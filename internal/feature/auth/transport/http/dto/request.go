// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// SignupReq は/auth/signupエンドポイントのリクエストボディを表します。
// roleは省略時にuserになります。
type SignupReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role"`
}

// LoginReq は/auth/loginエンドポイントのリクエストボディを表します。
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileReq は/auth/profileエンドポイントのリクエストボディを表します。
// 省略されたフィールドは変更しません。
type UpdateProfileReq struct {
	Name         *string `json:"name"`
	ProfileImage *string `json:"profileImage"`
}

// ChangePasswordReq は/auth/passwordエンドポイントのリクエストボディを表します。
type ChangePasswordReq struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}
