package biz

import (
	"github.com/greetbot/greetbot/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Filter     *usecase.FilterUsecase
	Classifier *usecase.ClassifierUsecase
	Weather    *usecase.WeatherUsecase
	Suggest    *usecase.SuggestUsecase
	Resolver   *usecase.ResolverUsecase
	Applicator *usecase.ApplicatorUsecase
}
