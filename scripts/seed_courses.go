// 写入演示课程，便于本地联调前端
//
// 用法: go run scripts/seed_courses.go -teacher-id <id> -teacher-name <name>

package main

import (
	"context"
	"course_market_backend/internal/config"
	"course_market_backend/internal/repository"
	"course_market_backend/internal/service"
	"course_market_backend/pkg/database"
	"course_market_backend/pkg/logger"
	"encoding/json"
	"flag"
	"log"
)

type demoCourse struct {
	Title       string
	Description string
	Category    string
	Level       string
	Price       string
	Sections    string
}

var demoCourses = []demoCourse{
	{
		Title:       "Introduction to Go",
		Description: "Types, interfaces and goroutines from scratch.",
		Category:    "Programming",
		Level:       "Beginner",
		Price:       "19.99",
		Sections: `[{"sectionTitle":"Getting started","chapters":[
			{"title":"Installing the toolchain","type":"Text"},
			{"title":"Hello, world","type":"Video"}]}]`,
	},
	{
		Title:       "Web Services with Gin",
		Description: "Routing, middleware and JSON APIs.",
		Category:    "Web Development",
		Level:       "Intermediate",
		Price:       "49",
		Sections: `[{"sectionTitle":"Routing","chapters":[{"title":"Groups and params"}]},
			{"sectionTitle":"Middleware","chapters":[{"title":"Writing middleware"},{"title":"Quiz","type":"Quiz"}]}]`,
	},
}

func main() {
	configDir := flag.String("config", "configs", "配置文件目录")
	teacherID := flag.String("teacher-id", "", "课程所属教师 ID")
	teacherName := flag.String("teacher-name", "Demo Teacher", "教师名称")
	flag.Parse()

	if *teacherID == "" {
		log.Fatal("-teacher-id is required")
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	courses := service.NewCourseService(repository.NewCourseRepository(db), nil)
	ctx := context.Background()

	for _, demo := range demoCourses {
		course, err := courses.CreateCourse(ctx, *teacherID, *teacherName)
		if err != nil {
			log.Fatalf("创建课程失败: %v", err)
		}

		title, description, category, level, status := demo.Title, demo.Description, demo.Category, demo.Level, "Published"
		sections, _ := json.Marshal(demo.Sections)
		_, err = courses.UpdateCourse(ctx, course.CourseID, *teacherID, &service.UpdateCourseInput{
			Title:       &title,
			Description: &description,
			Category:    &category,
			Level:       &level,
			Status:      &status,
			Price:       json.RawMessage(`"` + demo.Price + `"`),
			Sections:    sections,
		})
		if err != nil {
			log.Fatalf("更新课程失败: %v", err)
		}
		log.Printf("已创建课程 %s (%s)", demo.Title, course.CourseID)
	}

	log.Println("完成！")
}
