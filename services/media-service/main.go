package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"mangrove-watch/pkg/middleware"
	"mangrove-watch/pkg/response"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const maxPhotoSize = 10 << 20 // 10 MiB

var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

var (
	storage       *minio.Client
	bucketName    = "report-photos"
	publicBaseURL string
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	middleware.SetServiceName("media-service")

	endpoint := envOr("MINIO_ENDPOINT", "localhost:9000")
	accessKey := envOr("MINIO_ACCESS_KEY", "minioadmin")
	secretKey := envOr("MINIO_SECRET_KEY", "minioadmin")
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"
	if v := os.Getenv("MEDIA_BUCKET"); v != "" {
		bucketName = v
	}
	publicBaseURL = envOr("MEDIA_PUBLIC_URL", "http://"+endpoint)

	var err error
	storage, err = minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		log.Fatalf("[ERROR] Failed to connect to MinIO: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	exists, err := storage.BucketExists(ctx, bucketName)
	if err != nil {
		log.Fatalf("[ERROR] Failed to check bucket: %v", err)
	}
	if !exists {
		if err := storage.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			log.Fatalf("[ERROR] Failed to create bucket: %v", err)
		}
		log.Printf("[OK] Bucket %q created", bucketName)
	}
	log.Println("[OK] Connected to MinIO")

	http.HandleFunc("/api/media/photos", middleware.LoggerMiddleware(middleware.AuthMiddleware(uploadPhotoHandler)).ServeHTTP)
	http.HandleFunc("/health", healthHandler)

	port := ":8083"
	log.Printf("[INFO] Media Service running on port %s", port)
	if err := http.ListenAndServe(port, nil); err != nil {
		log.Fatalf("[ERROR] Server failed: %v", err)
	}
}

// objectName maps a photo content type to a fresh object name, or reports that
// the type is not accepted.
func objectName(contentType string) (string, bool) {
	ext, ok := allowedPhotoTypes[contentType]
	if !ok {
		return "", false
	}
	return uuid.New().String() + ext, true
}

func photoURL(base, bucket, object string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, object)
}

func uploadPhotoHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		response.Error(w, http.StatusBadRequest, "Photo too large or malformed upload", err.Error())
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "photo field is required", "")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	name, ok := objectName(contentType)
	if !ok {
		response.Error(w, http.StatusUnsupportedMediaType, "Unsupported photo type", "Accepted: JPEG, PNG, WebP")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if _, err := storage.PutObject(ctx, bucketName, name, file, header.Size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		log.Printf("[ERROR] Failed to store photo: %v", err)
		response.Error(w, http.StatusInternalServerError, "Failed to store photo", err.Error())
		return
	}

	log.Printf("[OK] Photo stored - Object: %s, Size: %d", name, header.Size)
	response.Success(w, http.StatusCreated, "Photo uploaded successfully", map[string]string{
		"photo_url": photoURL(publicBaseURL, bucketName, name),
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "UP",
		"service": "media-service",
	})
}
