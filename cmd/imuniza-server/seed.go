package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/imuniza/imuniza/internal/config"
	"github.com/imuniza/imuniza/internal/domain/record"
	"github.com/imuniza/imuniza/internal/domain/schedule"
	"github.com/imuniza/imuniza/internal/domain/school"
	"github.com/imuniza/imuniza/internal/domain/status"
	"github.com/imuniza/imuniza/internal/domain/student"
	"github.com/imuniza/imuniza/internal/domain/vaccine"
	"github.com/imuniza/imuniza/internal/platform/db"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo schools, students, vaccines and a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, db.PoolConfig{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.InTx(ctx, pool, func(ctx context.Context) error {
				return seed(ctx, pool)
			}); err != nil {
				return err
			}
			fmt.Println("Seed data loaded.")
			return nil
		},
	}
}

func date(y int, m time.Month, d int) status.Date {
	return status.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// seed loads a small but coherent demo dataset: two schools, the
// 2025 HPV schedule with both doses, and students spread across every
// status the dashboards distinguish.
func seed(ctx context.Context, pool *pgxpool.Pool) error {
	vaccines := vaccine.NewRepoPG(pool)
	schools := school.NewRepoPG(pool)
	schedules := schedule.NewRepoPG(pool)
	students := student.NewRepoPG(pool)
	records := record.NewRepoPG(pool)

	hpv := &vaccine.Vaccine{Code: "HPV", Name: "HPV quadrivalente"}
	dtpa := &vaccine.Vaccine{Code: "DTPA", Name: "dTpa (tríplice bacteriana acelular)"}
	meningo := &vaccine.Vaccine{Code: "MENACWY", Name: "Meningocócica ACWY"}
	for _, v := range []*vaccine.Vaccine{hpv, dtpa, meningo} {
		if err := vaccines.Create(ctx, v); err != nil {
			return fmt.Errorf("seed vaccine %s: %w", v.Code, err)
		}
	}

	version := &schedule.ScheduleVersion{Code: "PNI-2025", Name: "Calendário Nacional 2025"}
	if err := schedules.Create(ctx, version); err != nil {
		return fmt.Errorf("seed schedule version: %w", err)
	}
	rules := []*schedule.ScheduleRule{
		{ScheduleVersionID: version.ID, VaccineID: hpv.ID, DoseNumber: 1, MinAgeMonths: 108, MaxAgeMonths: 179},
		{ScheduleVersionID: version.ID, VaccineID: hpv.ID, DoseNumber: 2, MinAgeMonths: 114, MaxAgeMonths: 179},
		{ScheduleVersionID: version.ID, VaccineID: dtpa.ID, DoseNumber: 1, MinAgeMonths: 48, MaxAgeMonths: 83},
		{ScheduleVersionID: version.ID, VaccineID: meningo.ID, DoseNumber: 1, MinAgeMonths: 132, MaxAgeMonths: 179},
	}
	for _, r := range rules {
		if err := schedules.CreateRule(ctx, r); err != nil {
			return fmt.Errorf("seed schedule rule: %w", err)
		}
	}
	if err := schedules.Activate(ctx, version.ID); err != nil {
		return fmt.Errorf("activate schedule: %w", err)
	}

	freire := &school.School{Name: "EM Paulo Freire", INEPCode: "35012345", Address: "Rua das Acácias, 120", TerritoryRef: "norte"}
	anisio := &school.School{Name: "EM Anísio Teixeira", INEPCode: "35054321", Address: "Av. Central, 900", TerritoryRef: "sul"}
	for _, sc := range []*school.School{freire, anisio} {
		if err := schools.Create(ctx, sc); err != nil {
			return fmt.Errorf("seed school: %w", err)
		}
	}

	seedStudents := []struct {
		st    student.Student
		doses []record.VaccinationRecord
	}{
		{
			st: student.Student{SchoolID: freire.ID, FullName: "Ana Souza", BirthDate: date(2015, 3, 12), Sex: student.SexFemale, ClassGroup: "5A"},
			doses: []record.VaccinationRecord{
				{VaccineID: hpv.ID, DoseNumber: 1, ApplicationDate: date(2024, 4, 2), Source: record.SourceHealth},
				{VaccineID: hpv.ID, DoseNumber: 2, ApplicationDate: date(2024, 10, 15), Source: record.SourceHealth},
			},
		},
		{
			st: student.Student{SchoolID: freire.ID, FullName: "Bruno Lima", BirthDate: date(2014, 7, 1), Sex: student.SexMale, ClassGroup: "6B"},
			doses: []record.VaccinationRecord{
				{VaccineID: hpv.ID, DoseNumber: 1, ApplicationDate: date(2023, 9, 20), Source: record.SourceSchool},
			},
		},
		{
			st: student.Student{SchoolID: anisio.ID, FullName: "Carla Mendes", BirthDate: date(2013, 1, 25), Sex: student.SexFemale, ClassGroup: "7A"},
		},
		{
			st: student.Student{SchoolID: anisio.ID, FullName: "Diego Alves", BirthDate: date(2016, 11, 8), Sex: student.SexMale, ClassGroup: "3C"},
			doses: []record.VaccinationRecord{
				{VaccineID: hpv.ID, DoseNumber: 1, ApplicationDate: date(2025, 5, 10), Source: record.SourceSchool},
			},
		},
	}
	for i := range seedStudents {
		st := &seedStudents[i].st
		if err := students.Create(ctx, st); err != nil {
			return fmt.Errorf("seed student %s: %w", st.FullName, err)
		}
		for _, dose := range seedStudents[i].doses {
			dose.StudentID = st.ID
			if err := records.Create(ctx, &dose); err != nil {
				return fmt.Errorf("seed record for %s: %w", st.FullName, err)
			}
		}
	}
	return nil
}
