package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Sink --dir ../domain/table --output domain/table --outpkg tablemock --filename sink_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name RunRepository --dir ../domain/corpus --output domain/corpus --outpkg corpusmock --filename run_repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Store --dir ../domain/corpus --output domain/corpus --outpkg corpusmock --filename store_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Source --dir ../domain/corpus --output domain/corpus --outpkg corpusmock --filename source_mock.go
