package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/interview-api/internal/session"
)

// interviewctl — терминальный клиент сессии интервью.
// Ведет локальный таймер, хранит черновики в SQLite и отправляет
// ответы на сервер при навигации между вопросами.
func main() {
	serverURL := flag.String("server", "http://localhost:8080", "адрес API сервера")
	token := flag.String("token", os.Getenv("INTERVIEW_TOKEN"), "JWT токен кандидата")
	interviewID := flag.Uint("interview", 0, "ID интервью")
	cachePath := flag.String("cache", defaultCachePath(), "путь к файлу кеша черновиков")
	flag.Parse()

	if *token == "" || *interviewID == 0 {
		fmt.Fprintln(os.Stderr, "Использование: interviewctl -interview <id> -token <jwt> [-server <url>]")
		os.Exit(2)
	}

	client := session.NewClient(*serverURL, *token, 90*time.Second)

	cache, err := session.NewSQLiteCache(*cachePath)
	if err != nil {
		log.Printf("Не удалось открыть кеш черновиков: %v", err)
		os.Exit(1)
	}
	defer cache.Close()

	ctx := context.Background()
	interview, err := client.GetInterview(ctx, uint(*interviewID))
	if err != nil {
		log.Printf("Не удалось загрузить интервью #%d: %v", *interviewID, err)
		os.Exit(1)
	}

	finished := make(chan struct{})
	controller := session.NewController(interview, client, cache, session.Callbacks{
		OnTimeAlmostUp: func() {
			fmt.Println("\n!!! Осталось 10 секунд !!!")
		},
		OnCompleted: func() {
			close(finished)
		},
	})

	if err := controller.Start(); err != nil {
		log.Printf("Не удалось открыть сессию: %v", err)
		os.Exit(1)
	}
	defer controller.Close()

	fmt.Printf("Интервью #%d: %s / %s (%s)\n", interview.ID, interview.Topic, interview.Role, interview.Difficulty)
	fmt.Println("Команды: :next :prev :jump N :skip :exit — любая другая строка становится черновиком ответа")
	printQuestion(controller)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-finished:
			fmt.Println("Интервью завершено. Результаты доступны на сервере.")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if done := handleLine(ctx, controller, line); done {
				select {
				case <-finished:
				case <-time.After(time.Second):
				}
				fmt.Println("Интервью завершено. Результаты доступны на сервере.")
				return
			}
		}
	}
}

// handleLine выполняет одну команду REPL; true — сессия закончена
func handleLine(ctx context.Context, controller *session.Controller, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	var err error
	switch fields[0] {
	case ":next":
		err = controller.Next(ctx)
	case ":prev":
		err = controller.Previous()
	case ":jump":
		if len(fields) < 2 {
			fmt.Println("Использование: :jump N")
			return false
		}
		n, convErr := strconv.Atoi(fields[1])
		if convErr != nil {
			fmt.Println("Использование: :jump N")
			return false
		}
		err = controller.JumpTo(n - 1) // Для кандидата вопросы нумеруются с 1
	case ":skip":
		err = controller.Skip(ctx)
	case ":exit":
		if err = controller.Exit(ctx); err == nil {
			return true
		}
	default:
		controller.SetDraft(line)
		fmt.Println("Черновик сохранен.")
		return false
	}

	if err != nil {
		fmt.Printf("Ошибка: %v\n", err)
		return false
	}
	printQuestion(controller)
	return false
}

func printQuestion(controller *session.Controller) {
	question := controller.CurrentQuestion()
	fmt.Printf("\n[%d] %s (осталось %s)\n", question.Position, question.Text, formatTime(controller.TimeLeft()))
	if draft := controller.Draft(); draft != "" {
		fmt.Printf("Черновик: %s\n", draft)
	}
	fmt.Print("> ")
}

func formatTime(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "interview_drafts.db"
	}
	return filepath.Join(home, ".interviewctl", "drafts.db")
}
