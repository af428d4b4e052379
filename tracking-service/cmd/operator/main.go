// Команда operator создает учетную запись оператора.
//
//	operator -username alice -password secret -name "Alice W." -role operator
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/director74/order-tracking/pkg/auth"
	"github.com/director74/order-tracking/tracking-service/config"
	"github.com/director74/order-tracking/tracking-service/internal/app"
	"github.com/director74/order-tracking/tracking-service/internal/entity"
)

func main() {
	username := flag.String("username", "", "логин оператора")
	password := flag.String("password", "", "пароль")
	displayName := flag.String("name", "", "имя для истории статусов")
	role := flag.String("role", auth.RoleOperator, "роль: operator или admin")
	flag.Parse()

	if *username == "" || *password == "" {
		flag.Usage()
		log.Fatal("нужны -username и -password")
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка при загрузке конфигурации: %v", err)
	}

	operator, err := app.CreateOperator(context.Background(), cfg, entity.CreateOperatorRequest{
		Username:    *username,
		DisplayName: *displayName,
		Password:    *password,
		Role:        *role,
	})
	if err != nil {
		log.Fatalf("Ошибка создания оператора: %v", err)
	}

	fmt.Printf("оператор %s (id %d, роль %s) создан\n", operator.Username, operator.ID, operator.Role)
}
