package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "muellepos/internal/config"
	router "muellepos/internal/http"
	"muellepos/internal/repositories"
	"muellepos/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	db := intconfig.ConnectDB(env)
	defer intconfig.CloseDB()

	repo := repositories.SaleRepository{DB: db}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := repo.EnsureSchema(ctx); err != nil {
		cancel()
		log.Fatalf("No se pudo preparar el schema: %v", err)
	}
	cancel()

	bridge := services.NewSaleBridge(repo, intconfig.EnsureDB)
	sessions := services.NewSessionStore(bridge)
	reports := services.ReportService{Store: repo}

	r := router.NewRouter(router.Deps{
		Env:      env,
		Sessions: sessions,
		Bridge:   bridge,
		Reports:  reports,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Servidor de taquilla en http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("No se pudo iniciar el servidor: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Apagando el servidor...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Fallo apagando el servidor: %v", err)
	}

	log.Println("Servidor detenido correctamente.")
}
