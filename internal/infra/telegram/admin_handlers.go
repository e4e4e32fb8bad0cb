package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"recruitment_notification_bot/internal/app"
	"recruitment_notification_bot/internal/domain/direction"
	idb "recruitment_notification_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterAdminHandlers registers handlers for the admin commands. It
// requires the bot instance, the admin service, and the configured admin
// Telegram ID.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, adminService *app.AdminService, adminTelegramID int64, baseLogger *logrus.Entry) {
	b.Handle("/add_recruitment", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/add_recruitment",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Błąd: brak uprawnień do tej komendy.")
		}

		args := c.Args()
		// Expected format: /add_recruitment <Name> <Year>
		if len(args) != 2 {
			handlerLogger.WithField("args_count", len(args)).Warn("Invalid command format")
			return c.Send("Nieprawidłowy format. Użyj: /add_recruitment <Nazwa> <Rok>")
		}

		year, err := strconv.Atoi(args[1])
		if err != nil {
			return c.Send("Błąd: rok musi być liczbą.")
		}

		rec, err := adminService.AddRecruitment(ctx, c.Sender().ID, args[0], year)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to add recruitment")
			return c.Send(fmt.Sprintf("Wystąpił błąd podczas tworzenia rekrutacji: %s", err.Error()))
		}

		handlerLogger.WithField("recruitment_id", rec.ID).Info("Recruitment added successfully")
		return c.Send(fmt.Sprintf("Rekrutacja %s %d utworzona (ID: %d).", rec.Name, rec.Year, rec.ID))
	})

	b.Handle("/add_direction", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/add_direction",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Błąd: brak uprawnień do tej komendy.")
		}

		args := c.Args()
		// Expected format: /add_direction <RecruitmentID> <Name> <BaseCategoryID>
		if len(args) != 3 {
			handlerLogger.WithField("args_count", len(args)).Warn("Invalid command format")
			return c.Send("Nieprawidłowy format. Użyj: /add_direction <IDRekrutacji> <Nazwa> <IDKategoriiBazowej>")
		}

		recruitmentID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Błąd: ID rekrutacji musi być liczbą.")
		}
		baseCategoryID, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return c.Send("Błąd: ID kategorii bazowej musi być liczbą.")
		}

		d, err := adminService.AddDirection(ctx, c.Sender().ID, recruitmentID, args[1], baseCategoryID)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			if errors.Is(err, idb.ErrRecruitmentNotFound) {
				logWithError.Warn("Recruitment not found")
				return c.Send(fmt.Sprintf("Rekrutacja o ID %d nie istnieje.", recruitmentID))
			}
			logWithError.Error("Failed to add direction")
			return c.Send(fmt.Sprintf("Wystąpił błąd podczas tworzenia kierunku: %s", err.Error()))
		}

		handlerLogger.WithField("direction_id", d.ID).Info("Direction created, provisioning queued")
		return c.Send(fmt.Sprintf("Kierunek %s utworzony (ID: %d). Kopiowanie kursów w toku — sprawdź /direction_status %d.", d.Name, d.ID, d.ID))
	})

	b.Handle("/direction_status", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/direction_status",
			"sender_id": c.Sender().ID,
		})

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Błąd: brak uprawnień do tej komendy.")
		}

		args := c.Args()
		// Expected format: /direction_status <DirectionID>
		if len(args) != 1 {
			return c.Send("Nieprawidłowy format. Użyj: /direction_status <IDKierunku>")
		}
		directionID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Błąd: ID kierunku musi być liczbą.")
		}

		d, err := adminService.DirectionStatus(ctx, c.Sender().ID, directionID)
		if err != nil {
			if errors.Is(err, idb.ErrDirectionNotFound) {
				return c.Send(fmt.Sprintf("Kierunek o ID %d nie istnieje.", directionID))
			}
			handlerLogger.WithError(err).Error("Failed to get direction status")
			return c.Send(fmt.Sprintf("Wystąpił błąd: %s", err.Error()))
		}

		return c.Send(formatDirectionStatus(d))
	})

	b.Handle("/add_exam", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/add_exam",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Błąd: brak uprawnień do tej komendy.")
		}

		args := c.Args()
		// Expected format: /add_exam <DirectionID> <Name> <OpensAt> <ClosesAt> (RFC3339)
		if len(args) != 4 {
			return c.Send("Nieprawidłowy format. Użyj: /add_exam <IDKierunku> <Nazwa> <Otwarcie> <Zamknięcie> (RFC3339)")
		}

		directionID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Błąd: ID kierunku musi być liczbą.")
		}
		opensAt, err := time.Parse(time.RFC3339, args[2])
		if err != nil {
			return c.Send("Błąd: data otwarcia musi być w formacie RFC3339 (np. 2026-09-01T10:00:00+02:00).")
		}
		closesAt, err := time.Parse(time.RFC3339, args[3])
		if err != nil {
			return c.Send("Błąd: data zamknięcia musi być w formacie RFC3339.")
		}

		e, err := adminService.AddExam(ctx, c.Sender().ID, directionID, args[1], opensAt, closesAt)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch {
			case errors.Is(err, app.ErrInvalidExamWindow):
				return c.Send("Błąd: zamknięcie musi być późniejsze niż otwarcie.")
			case errors.Is(err, idb.ErrDirectionNotFound):
				return c.Send(fmt.Sprintf("Kierunek o ID %d nie istnieje.", directionID))
			default:
				logWithError.Error("Failed to add exam")
				return c.Send(fmt.Sprintf("Wystąpił błąd podczas tworzenia testu: %s", err.Error()))
			}
		}

		handlerLogger.WithField("exam_id", e.ID).Info("Exam added successfully")
		return c.Send(fmt.Sprintf("Test %s utworzony (ID: %d), okno %s – %s.", e.Name, e.ID,
			e.OpensAt.Format("2006-01-02 15:04"), e.ClosesAt.Format("2006-01-02 15:04")))
	})

	b.Handle("/enroll", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/enroll",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Błąd: brak uprawnień do tej komendy.")
		}

		directionID, userID, errMsg := parseDirectionUserArgs(c.Args(), "/enroll")
		if errMsg != "" {
			return c.Send(errMsg)
		}

		if err := adminService.EnrollUser(ctx, c.Sender().ID, directionID, userID); err != nil {
			logWithError := handlerLogger.WithError(err)
			switch {
			case errors.Is(err, idb.ErrDirectionNotFound):
				return c.Send(fmt.Sprintf("Kierunek o ID %d nie istnieje.", directionID))
			case errors.Is(err, idb.ErrDuplicateDirectionUser):
				return c.Send("Użytkownik jest już zapisany na ten kierunek.")
			default:
				logWithError.Error("Failed to enroll user")
				return c.Send(fmt.Sprintf("Wystąpił błąd podczas zapisu: %s", err.Error()))
			}
		}

		handlerLogger.Info("User enrolled successfully")
		return c.Send(fmt.Sprintf("Użytkownik %d zapisany na kierunek %d.", userID, directionID))
	})

	b.Handle("/declare", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/declare",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Błąd: brak uprawnień do tej komendy.")
		}

		directionID, userID, errMsg := parseDirectionUserArgs(c.Args(), "/declare")
		if errMsg != "" {
			return c.Send(errMsg)
		}

		if err := adminService.Declare(ctx, c.Sender().ID, directionID, userID); err != nil {
			logWithError := handlerLogger.WithError(err)
			if errors.Is(err, idb.ErrDirectionUserNotFound) {
				return c.Send("Użytkownik nie jest zapisany na ten kierunek.")
			}
			logWithError.Error("Failed to process declaration")
			return c.Send(fmt.Sprintf("Wystąpił błąd podczas deklaracji: %s", err.Error()))
		}

		handlerLogger.Info("Declaration processed")
		return c.Send(fmt.Sprintf("Deklaracja użytkownika %d dla kierunku %d zarejestrowana.", userID, directionID))
	})
}

// parseDirectionUserArgs parses the common "<DirectionID> <UserID>" argument
// pair. It returns a user-facing error message when parsing fails.
func parseDirectionUserArgs(args []string, command string) (directionID, userID int64, errMsg string) {
	if len(args) != 2 {
		return 0, 0, fmt.Sprintf("Nieprawidłowy format. Użyj: %s <IDKierunku> <IDUżytkownika>", command)
	}
	directionID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, "Błąd: ID kierunku musi być liczbą."
	}
	userID, err = strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, 0, "Błąd: ID użytkownika musi być liczbą."
	}
	return directionID, userID, ""
}

func formatDirectionStatus(d *direction.Direction) string {
	if d.CopyStatus != direction.CopyStatusDone {
		return fmt.Sprintf("Kierunek %d (%s): kopiowanie kursów w toku.", d.ID, d.Name)
	}
	ref := func(v int64, valid bool) string {
		if !valid {
			return "brak"
		}
		return strconv.FormatInt(v, 10)
	}
	return fmt.Sprintf(
		"Kierunek %d (%s): kopiowanie zakończone.\nArchiwum: %s\nPrzygotowanie: %s\nTesty: %s",
		d.ID, d.Name,
		ref(d.ArchiveCourseID.Int64, d.ArchiveCourseID.Valid),
		ref(d.PreparationCourseID.Int64, d.PreparationCourseID.Valid),
		ref(d.QuizesCourseID.Int64, d.QuizesCourseID.Valid),
	)
}
