package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
)

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

func ActiveQuestionsKey(level models.Level) string {
	return fmt.Sprintf("active:%s", level)
}

func SettingsKey(level models.Level) string {
	return fmt.Sprintf("level:%s", level)
}

// InvalidateQuestionCache drops the cached active sets of the given levels.
// An update can move a question between levels, so callers pass both.
func InvalidateQuestionCache(ctx context.Context, cm *CacheManager, levels ...models.Level) {
	keys := make([]string, 0, len(levels))
	seen := make(map[models.Level]bool, len(levels))
	for _, level := range levels {
		if level == "" || seen[level] {
			continue
		}
		seen[level] = true
		keys = append(keys, ActiveQuestionsKey(level))
	}
	SafeDelete(ctx, cm.Question, keys...)
}

// InvalidateSettingsCache drops the cached settings of a level
func InvalidateSettingsCache(ctx context.Context, cm *CacheManager, level models.Level) {
	SafeDelete(ctx, cm.Settings, SettingsKey(level))
}
