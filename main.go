package main

import (
	"context"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	moderation "github.com/agoralive/debate-engine/repos/moderation"
	resend "github.com/agoralive/debate-engine/repos/resend"

	auth "github.com/agoralive/debate-engine/pkg/auth"

	arenas "github.com/agoralive/debate-engine/services/arenas"
	tournaments "github.com/agoralive/debate-engine/services/tournaments"

	expiry "github.com/agoralive/debate-engine/workers/expiry"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v\n", err)
	}

	projectID := os.Getenv("FIREBASE_PROJECT_ID")
	credentialsJSON := os.Getenv("FIREBASE_CREDENTIALS_JSON")
	port := os.Getenv("PORT")
	allowOrigins := os.Getenv("CORS_HOSTS")

	credentialsOption := option.WithCredentialsJSON([]byte(credentialsJSON))

	firestoreClient, err := firestore.NewClient(ctx, projectID, credentialsOption)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	firebaseApp, err := firebase.NewApp(ctx, nil, credentialsOption)
	if err != nil {
		log.Fatalf("error initializing app: %v\n", err)
	}

	moderationService := moderation.NewService()
	resendService := resend.NewService(firestoreClient)

	arenaService := arenas.NewArenaService(firestoreClient, moderationService, resendService)
	tournamentService := tournaments.NewTournamentService(firestoreClient, resendService)

	sweeper := expiry.NewSweeper(arenaService)
	sweeper.Start(ctx)

	config := cors.DefaultConfig()
	config.AllowOrigins = strings.Split(allowOrigins, ",")
	config.AllowCredentials = true
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Access-Control-Allow-Origin"}

	router := gin.Default()
	router.Use(cors.New(config))

	arenasRouter := router.Group("/arenas/v1")
	arenasRouter.Use(auth.AuthMiddleware(firebaseApp)) // Apply the middleware here

	tournamentsRouter := router.Group("/tournaments/v1")
	tournamentsRouter.Use(auth.AuthMiddleware(firebaseApp)) // Apply the middleware here

	arenas.NewHTTPHandler(arenas.HTTPOptions{
		Service: arenaService,
		Router:  arenasRouter,
	})

	tournaments.NewHTTPHandler(tournaments.HTTPOptions{
		Service: tournamentService,
		Router:  tournamentsRouter,
	})

	log.Fatal(router.Run(":" + port))
}
