package credit

import (
	"fmt"
)

// UserType 利用者タイプを表す値オブジェクト
type UserType string

const (
	UserTypeCouple  UserType = "couple"  // 挙式するカップル
	UserTypePlanner UserType = "planner" // ウェディングプランナー
)

// NewUserType 新しいUserTypeを作成
func NewUserType(s string) (UserType, error) {
	switch s {
	case "couple", "planner":
		return UserType(s), nil
	default:
		return "", fmt.Errorf("invalid user type: %s", s)
	}
}

// String 文字列表現を返す
func (ut UserType) String() string {
	return string(ut)
}

// Valid 有効な利用者タイプかどうかを返す
func (ut UserType) Valid() bool {
	return ut == UserTypeCouple || ut == UserTypePlanner
}
