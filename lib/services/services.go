// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package services

import (
	"fmt"
	"reflect"

	"github.com/ChainSafe/tally/internal/log"
)

// Service must be implemented by all long-lived services of the process.
type Service interface {
	Start() error
	Stop() error
}

// ServiceRegistry starts services in registration order and
// stops them in reverse order.
type ServiceRegistry struct {
	services     map[reflect.Type]Service
	serviceTypes []reflect.Type
	started      int
	logger       log.LeveledLogger
}

// NewServiceRegistry creates an empty registry.
func NewServiceRegistry(logger log.LeveledLogger) *ServiceRegistry {
	return &ServiceRegistry{
		services: make(map[reflect.Type]Service),
		logger:   logger,
	}
}

// RegisterService stores a new service in the registry.
// A second service of an already registered type is ignored.
func (s *ServiceRegistry) RegisterService(service Service) {
	kind := reflect.TypeOf(service)
	if _, exists := s.services[kind]; exists {
		s.logger.Warnf("tried to add service type %s that has already been seen", kind)
		return
	}
	s.services[kind] = service
	s.serviceTypes = append(s.serviceTypes, kind)
}

// StartAll starts all registered services. If a service fails to start,
// the services already started are stopped and the error is returned.
func (s *ServiceRegistry) StartAll() (err error) {
	s.logger.Debugf("starting services: %v", s.serviceTypes)
	for _, typ := range s.serviceTypes {
		s.logger.Debugf("starting service %s", typ)
		err = s.services[typ].Start()
		if err != nil {
			s.StopAll()
			return fmt.Errorf("starting service %s: %w", typ, err)
		}
		s.started++
	}
	s.logger.Debug("all services started")
	return nil
}

// StopAll stops all started services in reverse order of start.
func (s *ServiceRegistry) StopAll() {
	for i := s.started - 1; i >= 0; i-- {
		typ := s.serviceTypes[i]
		s.logger.Debugf("stopping service %s", typ)
		err := s.services[typ].Stop()
		if err != nil {
			s.logger.Errorf("error stopping service %s: %s", typ, err)
		}
	}
	s.started = 0
	s.logger.Debug("all services stopped")
}

// Get retrieves the service registered with the same type as srvc.
func (s *ServiceRegistry) Get(srvc interface{}) Service {
	if reflect.TypeOf(srvc).Kind() != reflect.Ptr {
		s.logger.Warnf("expected a pointer but got %T", srvc)
		return nil
	}

	if service, ok := s.services[reflect.TypeOf(srvc)]; ok {
		return service
	}
	s.logger.Warnf("unknown service type %T", srvc)
	return nil
}
