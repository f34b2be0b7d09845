package docstore

import "fmt"

// RoleUser возвращает строку роли конкретного пользователя.
func RoleUser(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

// PermissionRead возвращает право чтения для роли.
func PermissionRead(role string) string {
	return fmt.Sprintf("read(%q)", role)
}

// PermissionUpdate возвращает право обновления для роли.
func PermissionUpdate(role string) string {
	return fmt.Sprintf("update(%q)", role)
}

// PermissionDelete возвращает право удаления для роли.
func PermissionDelete(role string) string {
	return fmt.Sprintf("delete(%q)", role)
}
