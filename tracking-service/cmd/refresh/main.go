// Команда refresh пересчитывает светофоры всех заказов один раз (для cron).
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/director74/order-tracking/tracking-service/config"
	"github.com/director74/order-tracking/tracking-service/internal/app"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка при загрузке конфигурации: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := app.RefreshOnce(ctx, cfg)
	if err != nil {
		log.Fatalf("Ошибка пересчета светофоров: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatalf("Ошибка вывода отчета: %v", err)
	}
}
