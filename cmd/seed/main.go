package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicport/patient-portal/internal/db"
)

const doctorsPerSpecialty = 3

type specialtySeed struct {
	name        string
	description string
}

var specialties = []specialtySeed{
	{"General Practice", "General medical consultation and primary care"},
	{"Cardiology", "Heart-related conditions"},
	{"Dermatology", "Skin conditions and treatments"},
	{"Orthopedics", "Bone and joint care"},
	{"Pediatrics", "Child healthcare"},
	{"Neurology", "Nervous system disorders"},
	{"Gynecology", "Women's healthcare"},
	{"Ophthalmology", "Eye care and vision"},
	{"ENT", "Ear, Nose, and Throat specialists"},
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedSpecialties(context.Background(), pool); err != nil {
		log.Fatalf("seed specialties: %v", err)
	}
	if err := seedDoctors(context.Background(), pool); err != nil {
		log.Fatalf("seed doctors: %v", err)
	}

	log.Println("seed complete")
}

func seedSpecialties(ctx context.Context, pool *pgxpool.Pool) error {
	log.Printf("seeding %d specialties", len(specialties))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, s := range specialties {
		_, err := tx.Exec(ctx, `
			INSERT INTO specialties (name, description, is_active)
			VALUES ($1, $2, TRUE)
			ON CONFLICT (name) DO NOTHING
		`, s.name, s.description)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("specialties seeded")
	return nil
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Only top up specialties that have no doctors yet, so re-seeding does
	// not multiply the roster.
	for _, s := range specialties {
		var count int
		err := tx.QueryRow(ctx, `
			SELECT count(*)
			FROM doctors d
			JOIN specialties sp ON sp.specialty_id = d.specialty_id
			WHERE sp.name = $1
		`, s.name).Scan(&count)
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		for i := 0; i < doctorsPerSpecialty; i++ {
			name := "Dr. " + gofakeit.LastName()
			_, err := tx.Exec(ctx, `
				INSERT INTO doctors (name, specialty_id, is_active)
				SELECT $1, specialty_id, TRUE FROM specialties WHERE name = $2
			`, name, s.name)
			if err != nil {
				return err
			}
		}

		log.Printf("seeded %d doctors for %s", doctorsPerSpecialty, s.name)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("doctors seeded")
	return nil
}
